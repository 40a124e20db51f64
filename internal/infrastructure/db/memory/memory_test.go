package memory

import (
	"testing"

	"github.com/noteapp/client/internal/infrastructure/db/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, NewStore())
}
