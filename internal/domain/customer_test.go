package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCustomerTopLevelID(t *testing.T) {
	parent := Customer{ID: primitive.NewObjectID(), Code: "C-100", Active: true}
	require.Equal(t, parent.ID.Hex(), parent.TopLevelID())
	require.Equal(t, parent.CustomerID(), parent.TopLevelID())

	branch := Customer{ID: primitive.NewObjectID(), Code: "C-100-B1", ParentID: parent.ID.Hex(), Active: true}
	require.Equal(t, parent.ID.Hex(), branch.TopLevelID())
	require.NotEqual(t, branch.CustomerID(), branch.TopLevelID())
}
