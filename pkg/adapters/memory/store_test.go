package memory_test

import (
	"testing"

	"github.com/dredimura/surface/pkg/adapters/memory"
	"github.com/dredimura/surface/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunActivationStoreContract(t, store)
}
