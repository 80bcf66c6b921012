package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuildFolderTree_GroupsByParent(t *testing.T) {
	root := Folder{ID: uuid.New(), Name: "root"}
	childA := Folder{ID: uuid.New(), Name: "a", ParentID: &root.ID, SortOrder: 0}
	childB := Folder{ID: uuid.New(), Name: "b", ParentID: &root.ID, SortOrder: 1}
	grandchild := Folder{ID: uuid.New(), Name: "a1", ParentID: &childA.ID}

	tree := BuildFolderTree([]Folder{root, childA, childB, grandchild})

	require.Len(t, tree, 1)
	require.Equal(t, "root", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "a", tree[0].Children[0].Name)
	require.Equal(t, "b", tree[0].Children[1].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Equal(t, "a1", tree[0].Children[0].Children[0].Name)
}

func TestBuildFolderTree_OrphanBecomesRoot(t *testing.T) {
	missingParent := uuid.New()
	orphan := Folder{ID: uuid.New(), Name: "orphan", ParentID: &missingParent}

	tree := BuildFolderTree([]Folder{orphan})

	require.Len(t, tree, 1)
	require.Equal(t, "orphan", tree[0].Name)
}

func TestBuildFolderTree_Empty(t *testing.T) {
	require.Empty(t, BuildFolderTree(nil))
}

func TestAnswerKey_ScalarForm(t *testing.T) {
	var k AnswerKey
	require.NoError(t, json.Unmarshal([]byte(`"B"`), &k))
	require.False(t, k.Multi)
	require.Equal(t, []string{"B"}, k.Values)

	out, err := json.Marshal(k)
	require.NoError(t, err)
	require.JSONEq(t, `"B"`, string(out))
}

func TestAnswerKey_ArrayForm(t *testing.T) {
	var k AnswerKey
	require.NoError(t, json.Unmarshal([]byte(`["A","C"]`), &k))
	require.True(t, k.Multi)
	require.Equal(t, []string{"A", "C"}, k.Values)

	out, err := json.Marshal(k)
	require.NoError(t, err)
	require.JSONEq(t, `["A","C"]`, string(out))
}

func TestAnswerKey_RejectsOtherShapes(t *testing.T) {
	var k AnswerKey
	require.Error(t, json.Unmarshal([]byte(`{"answer":"A"}`), &k))
	require.Error(t, json.Unmarshal([]byte(`42`), &k))
}
