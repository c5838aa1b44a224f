package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	audit "inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/audit/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	suite.Run(t, &storetest.ContractSuite{NewStore: func(*testing.T) audit.Store { return New() }})
}

func TestMemoryStore_MetadataIsCopied(t *testing.T) {
	store := New()
	meta := map[string]string{"k": "v"}
	require.NoError(t, store.Append(context.Background(), audit.Event{ID: "1", SubjectID: "s", Metadata: meta}))
	meta["k"] = "mutated"

	events, err := store.ListBySubject(context.Background(), "s", 10)
	require.NoError(t, err)
	assert.Equal(t, "v", events[0].Metadata["k"])
	assert.Equal(t, 1, store.Len())
}
