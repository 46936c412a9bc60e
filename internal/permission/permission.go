// Package permission maps actor roles to fixed capability bundles.  The
// editor never branches on role names; every gate is expressed as a
// capability check so the bundles below are the single source of truth
// for what each role may do.
package permission

// Capabilities is the full capability set the permission gateway grants
// an actor.  RollbackDaysLimit bounds how far back a restore may reach;
// zero means unlimited.
type Capabilities struct {
	CanEditDrafts     bool `json:"can_edit_drafts"`
	CanPublish        bool `json:"can_publish"`
	CanDelete         bool `json:"can_delete"`
	CanRollback       bool `json:"can_rollback"`
	CanManageUsers    bool `json:"can_manage_users"`
	CanViewLogs       bool `json:"can_view_logs"`
	CanChangeSettings bool `json:"can_change_settings"`
	CanExport         bool `json:"can_export"`
	CanImport         bool `json:"can_import"`
	RollbackDaysLimit int  `json:"rollback_days_limit,omitempty"`
}

// Actor identifies the user driving an editor session or lifecycle
// transition.  The role comes from the JWT "role" claim.
type Actor struct {
	ID   uint64 `json:"id"`
	Role string `json:"role"`
}

// Capabilities resolves the actor's capability bundle.
func (a Actor) Capabilities() Capabilities { return ForRole(a.Role) }

// ForRole returns the fixed capability bundle for a role name.  Unknown
// roles resolve to the empty bundle, which denies everything.
func ForRole(role string) Capabilities {
	switch role {
	case "OWNER":
		return Capabilities{
			CanEditDrafts:     true,
			CanPublish:        true,
			CanDelete:         true,
			CanRollback:       true,
			CanManageUsers:    true,
			CanViewLogs:       true,
			CanChangeSettings: true,
			CanExport:         true,
			CanImport:         true,
		}
	case "MANAGER":
		return Capabilities{
			CanEditDrafts:     true,
			CanPublish:        true,
			CanDelete:         true,
			CanRollback:       true,
			CanViewLogs:       true,
			CanExport:         true,
			RollbackDaysLimit: 30,
		}
	case "STAFF":
		return Capabilities{
			CanEditDrafts: true,
			CanExport:     true,
		}
	case "VIEWER":
		return Capabilities{}
	default:
		return Capabilities{}
	}
}
