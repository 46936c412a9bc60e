package editor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

func TestValidateOverlapAndAutoFix(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 240, 320),
		baselineTable("t2", "T-2", 260, 320),
	}, nil, nil)
	e := editor.NewEditor(d)

	result := e.Validate()
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	require.Equal(t, editor.IssueOverlap, result.Errors[0].Type)
	require.ElementsMatch(t, []string{"t1", "t2"}, result.Errors[0].IDs)

	// The auto-fix shifts the second table clear of the first.
	fixed, err := e.AutoFixOverlap("t1", "t2")
	require.NoError(t, err)
	require.True(t, fixed.IsValid)
	require.Equal(t, 400.0, d.TableByID("t2").X)
	require.Equal(t, model.ChangeModified, d.TableByID("t2").Status)

	// The fix is a recorded action and undoes like any other edit.
	require.True(t, e.Undo())
	require.Equal(t, 260.0, d.TableByID("t2").X)
}

func TestValidateTouchingEdgesDoNotOverlap(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 100, 100),
		baselineTable("t2", "T-2", 240, 100), // t1 right edge == t2 left edge
	}, nil, nil)

	require.True(t, editor.Validate(d).IsValid)
}

func TestValidateOutOfBounds(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 1100, 100), // spans to x=1240 on a 1200 floor
		baselineTable("t2", "T-2", 100, -10),
	}, nil, nil)

	result := editor.Validate(d)
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
	for _, issue := range result.Errors {
		require.Equal(t, editor.IssueOutOfBounds, issue.Type)
	}
}

func TestValidateDuplicateNamesCaseInsensitive(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "Window 1", 100, 100),
		baselineTable("t2", " window 1 ", 500, 100),
	}, nil, nil)

	result := editor.Validate(d)
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	require.Equal(t, editor.IssueDuplicateName, result.Errors[0].Type)
	require.ElementsMatch(t, []string{"t1", "t2"}, result.Errors[0].IDs)
}

func TestValidateIgnoresDeletedTables(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 240, 320),
		baselineTable("t2", "T-2", 260, 320),
	}, nil, nil)
	require.NoError(t, d.Delete("t2"))

	require.True(t, editor.Validate(d).IsValid)
}
