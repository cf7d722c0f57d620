package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

func TestWriteStock(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.SetHeaders(repo.TableStock, repo.ColTeam, repo.ColKit, "S", repo.ColPrice)
	store.Seed(repo.TableStock,
		map[string]any{repo.ColTeam: "Arsenal", repo.ColKit: "Home", "S": 3, repo.ColPrice: "30"},
		map[string]any{repo.ColTeam: "Inter, Milan", repo.ColKit: "Away"},
	)

	var buf bytes.Buffer
	require.NoError(t, NewService(store, nil).Write(context.Background(), "Stock", &buf))

	assert.Equal(t, "Team,Kit,S,Price\nArsenal,Home,3,30\n\"Inter, Milan\",Away,,\n", buf.String())
}

func TestWriteSalesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService(repo.NewMemoryRepository(), nil).Write(context.Background(), "sales", &buf))

	assert.Equal(t, "Timestamp,Team,Kit,Size,Quantity,Sold Price,Discount,Deal Type,Buyer Name,Total\n", buf.String())
}

func TestWriteUnknownTarget(t *testing.T) {
	var buf bytes.Buffer
	err := NewService(repo.NewMemoryRepository(), nil).Write(context.Background(), "customers", &buf)

	assert.ErrorIs(t, err, ErrUnknownExportTarget)
	assert.Zero(t, buf.Len())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "sales.csv", Filename("Sales"))
}
