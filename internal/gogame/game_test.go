package gogame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongoengine/gongo/internal/goboard"
	"github.com/gongoengine/gongo/internal/rules"
	"github.com/gongoengine/gongo/internal/sgf"
)

func v(x, y int) goboard.Vertex { return goboard.Vertex{X: x, Y: y} }

func TestNewGameSeedsRootMetadata(t *testing.T) {
	g := New(9, rules.Japanese, 6.5)
	root := g.Tree().Root()
	assert.Equal(t, 9, sgf.ParseSize(root))
	assert.Equal(t, "Japanese", root.StringValue(sgf.TagRU))
	km, ok := root.FloatValue(sgf.TagKM)
	require.True(t, ok)
	assert.InDelta(t, 6.5, km, 0.0001)
	assert.Equal(t, goboard.Black, g.ActiveColor())
}

func TestPlayInsertsChildAndStepsIntoIt(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.Black)))

	assert.Equal(t, goboard.Black, g.Tree().Current().Move().Color)
	assert.Equal(t, goboard.Black, g.Engine().Board().At(v(2, 2)))
	assert.Equal(t, goboard.White, g.ActiveColor())
	assert.Equal(t, goboard.White, g.Engine().Active())
}

func TestPlayIllegalMoveReturnsRulesError(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.Black)))

	err := g.Play(goboard.Play(v(2, 2), goboard.White))
	require.Error(t, err)
	var rerr *rules.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, rules.OccupiedPoint, rerr.Kind)
	// a rejected move must not have inserted a tree node.
	assert.Empty(t, g.Tree().Children())
}

func TestResignSetsRootResultProperty(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Resign(goboard.Black)))
	assert.Equal(t, "W+R", g.Tree().Root().StringValue(sgf.TagRE))
}

func TestTwoPassesSetsEmptyResultProperty(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Pass(goboard.Black)))
	require.NoError(t, g.Play(goboard.Pass(goboard.White)))
	vals, ok := g.Tree().Root().Get(sgf.TagRE)
	require.True(t, ok)
	assert.Empty(t, vals)
}

func TestAddRecordsUnderCurrentNodeNotANewChild(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Add(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.Add(goboard.Play(v(1, 0), goboard.Black)))

	assert.True(t, g.Tree().IsRoot())
	ab, ok := g.Tree().Current().Get(sgf.TagAB)
	require.True(t, ok)
	assert.Len(t, ab, 2)
	assert.Equal(t, goboard.Black, g.Engine().Board().At(v(0, 0)))
	// Add must not advance the turn.
	assert.Equal(t, goboard.Black, g.ActiveColor())
}

func TestRemoveStoneRecordsAE(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Add(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.RemoveStone(v(0, 0)))

	assert.Equal(t, goboard.Empty, g.Engine().Board().At(v(0, 0)))
	ae, ok := g.Tree().Current().Get(sgf.TagAE)
	require.True(t, ok)
	assert.Equal(t, []string{"aa"}, ae)
}

func TestStepUpReplaysExactBranch(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.Black)))
	require.NoError(t, g.Play(goboard.Play(v(3, 3), goboard.White)))
	require.NoError(t, g.Play(goboard.Play(v(4, 4), goboard.Black)))

	require.NoError(t, g.StepUp(1))
	assert.Equal(t, goboard.White, g.Tree().Current().Move().Color)
	assert.Equal(t, goboard.Black, g.Engine().Board().At(v(2, 2)))
	assert.Equal(t, goboard.White, g.Engine().Board().At(v(3, 3)))
	assert.Equal(t, goboard.Empty, g.Engine().Board().At(v(4, 4)))
	assert.Equal(t, goboard.Black, g.Engine().Active())
}

func TestStepUpZeroAtRootIsNoop(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.StepUp(0))
	assert.True(t, g.Tree().IsRoot())
}

func TestStepUpPastRootFails(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.Black)))

	err := g.StepUp(5)
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, CannotStepPastRoot, gerr.Kind)
}

func TestPlayDefaultSequenceWalksFirstChildUntilLeaf(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.Black)))
	require.NoError(t, g.Play(goboard.Play(v(3, 3), goboard.White)))

	require.NoError(t, g.StepUp(2))
	require.NoError(t, g.PlayDefaultSequence())

	assert.True(t, g.Tree().IsLeaf())
	assert.Equal(t, goboard.Black, g.Engine().Board().At(v(2, 2)))
	assert.Equal(t, goboard.White, g.Engine().Board().At(v(3, 3)))
}

func TestPlayMoveSequenceRollsBackOnFirstIllegalMove(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	checkpointDepth := g.Tree().Depth()

	err := g.PlayMoveSequence([]goboard.Move{
		goboard.Play(v(1, 1), goboard.White),
		goboard.Play(v(1, 1), goboard.Black), // occupied: illegal
		goboard.Play(v(2, 2), goboard.White),
	})
	require.Error(t, err)
	var rerr *rules.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, rules.OccupiedPoint, rerr.Kind)

	assert.Equal(t, checkpointDepth, g.Tree().Depth())
	assert.Equal(t, goboard.Black, g.Engine().Board().At(v(0, 0)))
	assert.Equal(t, goboard.Empty, g.Engine().Board().At(v(1, 1)))
	assert.Equal(t, goboard.Empty, g.Engine().Board().At(v(2, 2)))
}

func TestGetSequencesEnumeratesLeavesUnderCursor(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	before := g.Tree().Current()

	require.NoError(t, g.Play(goboard.Play(v(1, 1), goboard.White)))
	require.NoError(t, g.StepUp(1))
	require.NoError(t, g.Play(goboard.Play(v(2, 2), goboard.White)))
	require.NoError(t, g.StepUp(1))

	sequences := g.GetSequences()
	require.Len(t, sequences, 2)
	assert.Equal(t, before, g.Tree().Current())
}

func TestGetSequencesAtLeafReturnsOneEmptySequence(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))

	sequences := g.GetSequences()
	require.Len(t, sequences, 1)
	assert.Empty(t, sequences[0])
}

func TestGetPropertiesCurrentNodeWinsOnCollision(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.SetProperty(sgf.TagC, []string{"node comment"}))
	require.NoError(t, g.StepUp(1))
	require.NoError(t, g.SetProperty(sgf.TagC, []string{"root comment"}))

	props := g.GetProperties()
	assert.Equal(t, []string{"root comment"}, props[sgf.TagC])

	require.NoError(t, g.PlayDefaultSequence())
	props = g.GetProperties()
	assert.Equal(t, []string{"node comment"}, props[sgf.TagC])
}

func TestSetPropertyRejectsEditingSize(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	err := g.SetProperty(sgf.TagSZ, []string{"19"})
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, CannotEditSize, gerr.Kind)
}

func TestSetPropertyRoutesFileWidePropertyToRoot(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.SetProperty(sgf.TagKM, []string{"0.5"}))

	assert.Equal(t, "0.5", g.Tree().Root().StringValue(sgf.TagKM))
}

func TestSetPropertyRejectsFFTooLow(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.SetProperty(sgf.TagFF, []string{"1"}))

	err := g.SetProperty(sgf.TagAE, []string{"aa"})
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, PropertyNotValidInFF, gerr.Kind)
	assert.Equal(t, "AE", gerr.Name)
}

func TestSetPropertyRejectsUnknownTag(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	err := g.SetProperty("ZZ", []string{"x"})
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, UnknownProperty, gerr.Kind)
}

func TestActiveColorWalksPastSetupOnlyNodes(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	// root is Null-move; two setup stones added directly to root.
	require.NoError(t, g.Add(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.Add(goboard.Play(v(1, 0), goboard.White)))
	assert.Equal(t, goboard.Black, g.ActiveColor())

	require.NoError(t, g.Play(goboard.Play(v(4, 4), goboard.Black)))
	assert.Equal(t, goboard.White, g.ActiveColor())
}

func TestDeleteBranchRemovesMatchingChild(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.StepUp(1))
	require.NoError(t, g.Play(goboard.Play(v(1, 1), goboard.Black)))
	require.NoError(t, g.StepUp(1))

	require.Len(t, g.Tree().Children(), 2)
	require.NoError(t, g.DeleteBranch(goboard.Play(v(1, 1), goboard.Black)))
	assert.Len(t, g.Tree().Children(), 1)
}

func TestDeleteBranchNoSuchMoveFails(t *testing.T) {
	g := New(9, rules.Chinese, 0)
	require.NoError(t, g.Play(goboard.Play(v(0, 0), goboard.Black)))
	require.NoError(t, g.StepUp(1))

	err := g.DeleteBranch(goboard.Play(v(5, 5), goboard.White))
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, NoSuchBranch, gerr.Kind)
}

func TestFromTreeSeedsFromRootMetadata(t *testing.T) {
	tree, err := sgf.Parse([]byte("(;FF[4]SZ[13]GM[1]RU[Japanese]KM[6.5])"))
	require.NoError(t, err)

	g := FromTree(tree)
	assert.Equal(t, 13, g.Engine().Side())
	assert.Equal(t, rules.Japanese, g.Engine().RulesKind())
	assert.InDelta(t, 6.5, g.Engine().Komi(), 0.0001)
}
