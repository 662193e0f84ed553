package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normas/internal/constants"
	"normas/internal/regulation"
	apperrors "normas/pkg/errors"
)

func newRegulation(title, createdAt, link string) regulation.Regulation {
	rtype := constants.RTypeDecree
	classification := int64(constants.FixedClassificationID)
	reg := regulation.Regulation{
		Title:            title,
		CreatedAt:        createdAt,
		UpdateAt:         time.Now(),
		IsActive:         true,
		Entity:           constants.EntityName,
		RTypeID:          &rtype,
		ClassificationID: &classification,
		Components:       []int64{constants.DefaultComponentID},
	}
	if link != "" {
		reg.ExternalLink = &link
	}
	return reg
}

func TestRegulationRepository_InsertAndGetByKey(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	reg := newRegulation("Decreto 123", "2024-01-01", "https://www.ani.gov.co/doc/1")
	summary := "Por la cual se adopta el plan"
	reg.Summary = &summary

	require.NoError(t, repo.Insert(ctx, &reg))
	assert.NotZero(t, reg.ID)

	stored, err := repo.GetByKey(ctx, reg.Key())
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, reg.ID, stored.ID)
	assert.Equal(t, "Decreto 123", stored.Title)
	assert.Equal(t, "2024-01-01", stored.CreatedAt)
	assert.Equal(t, constants.EntityName, stored.Entity)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, summary, *stored.Summary)
	require.NotNil(t, stored.RTypeID)
	assert.Equal(t, constants.RTypeDecree, *stored.RTypeID)
	assert.Equal(t, []int64{int64(constants.DefaultComponentID)}, stored.Components)
}

func TestRegulationRepository_GetByKey_NotFound(t *testing.T) {
	infra := SetupTestInfra(t)
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	stored, err := repo.GetByKey(context.Background(), regulation.Key{
		Title: "No existe", CreatedAt: "2024-01-01",
	})
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRegulationRepository_InsertDuplicateKey(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	first := newRegulation("Decreto 123", "2024-01-01", "https://www.ani.gov.co/doc/1")
	require.NoError(t, repo.Insert(ctx, &first))

	second := newRegulation("Decreto 123", "2024-01-01", "https://www.ani.gov.co/doc/1")
	err := repo.Insert(ctx, &second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateKey))

	// The failed insert must not leave orphan component rows.
	var componentRows int
	require.NoError(t, infra.PostgresDB.QueryRow(
		"SELECT COUNT(*) FROM regulations_component").Scan(&componentRows))
	assert.Equal(t, 1, componentRows)
}

func TestRegulationRepository_NullLinkCollides(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	first := newRegulation("Decreto 123", "2024-01-01", "")
	require.NoError(t, repo.Insert(ctx, &first))

	second := newRegulation("Decreto 123", "2024-01-01", "")
	err := repo.Insert(ctx, &second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateKey))
}

func TestRegulationRepository_ExistingKeys(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	a := newRegulation("Decreto 123", "2024-01-01", "https://www.ani.gov.co/doc/1")
	b := newRegulation("Resolución 456", "2024-02-02", "")
	require.NoError(t, repo.Insert(ctx, &a))
	require.NoError(t, repo.Insert(ctx, &b))

	keys, err := repo.ExistingKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	assert.Contains(t, keys, regulation.Key{
		Title: "Decreto 123", CreatedAt: "2024-01-01", ExternalLink: "https://www.ani.gov.co/doc/1",
	})
	assert.Contains(t, keys, regulation.Key{
		Title: "Resolución 456", CreatedAt: "2024-02-02", ExternalLink: "",
	})
}

func TestRegulationRepository_ExistingKeysScopedByEntity(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	other := newRegulation("Decreto 999", "2024-05-05", "")
	other.Entity = "Otra Entidad"
	require.NoError(t, repo.Insert(ctx, &other))

	keys, err := repo.ExistingKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRegulationRepository_CascadeDelete(t *testing.T) {
	infra := SetupTestInfra(t)
	ctx := context.Background()
	repo := regulation.NewRepository(infra.PostgresDB, constants.EntityName)

	reg := newRegulation("Decreto 123", "2024-01-01", "")
	reg.Components = []int64{7, 8}
	require.NoError(t, repo.Insert(ctx, &reg))

	_, err := infra.PostgresDB.Exec("DELETE FROM regulations WHERE id = $1", reg.ID)
	require.NoError(t, err)

	var componentRows int
	require.NoError(t, infra.PostgresDB.QueryRow(
		"SELECT COUNT(*) FROM regulations_component").Scan(&componentRows))
	assert.Equal(t, 0, componentRows)
}
