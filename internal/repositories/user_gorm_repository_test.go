package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

func TestGORMUserRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMUserRepository(db)

	user := &models.User{Name: "Jane Customer Of The Year", Email: "jane@example.com", PasswordHash: "hash", Role: models.RoleCustomer}
	require.NoError(t, repo.Create(ctx(), user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx(), "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Create(ctx(), &models.User{Name: "Someone Else Entirely", Email: "jane@example.com", PasswordHash: "hash", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestGORMUserRepository_CreateRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMUserRepository(db)

	err := repo.Create(ctx(), &models.User{Name: "Someone", Email: "x@example.com", PasswordHash: "hash", Role: models.Role("root")})
	assert.ErrorIs(t, err, repositories.ErrConstraint)
}

func TestGORMUserRepository_ListFiltersAndRating(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	admin := seedUser(t, db, "Ada Admin", "ada@example.com", models.RoleAdmin)
	good := seedUser(t, db, "Good Owner", "good@example.com", models.RoleStoreOwner)
	idle := seedUser(t, db, "Idle Owner", "idle@example.com", models.RoleStoreOwner)
	alice := seedUser(t, db, "Alice", "alice@shop.test", models.RoleCustomer)
	store := seedStore(t, db, good, "Alpha", "1 Main St", "Retail")
	_, err := ratingRepo.Create(ctx(), &models.Rating{UserID: alice.ID, StoreID: store.ID, Rating: 4})
	require.NoError(t, err)

	owners, err := repo.List(ctx(), repositories.UserFilter{
		Role: string(models.RoleStoreOwner),
		Sort: repositories.Sort{Field: "rating", Order: repositories.SortDesc},
	})
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, good.ID, owners[0].ID)
	require.NotNil(t, owners[0].Rating)
	assert.Equal(t, 4.0, *owners[0].Rating)
	assert.Equal(t, idle.ID, owners[1].ID)
	require.NotNil(t, owners[1].Rating)
	assert.Zero(t, *owners[1].Rating)

	byEmail, err := repo.List(ctx(), repositories.UserFilter{Email: "EXAMPLE.COM"})
	require.NoError(t, err)
	require.Len(t, byEmail, 3)
	assert.Equal(t, admin.ID, byEmail[0].ID)
	assert.Nil(t, byEmail[0].Rating, "only store owners carry a rating")

	byName, err := repo.List(ctx(), repositories.UserFilter{Name: "ali"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, alice.ID, byName[0].ID)
}

func TestGORMUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewGORMUserRepository(db)
	user := seedUser(t, db, "Alice", "alice@example.com", models.RoleCustomer)

	address := "221B Baker Street"
	user.Address = &address
	user.Role = models.RoleStoreOwner
	require.NoError(t, repo.Update(ctx(), user))

	saved, err := repo.GetByID(ctx(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Address)
	assert.Equal(t, address, *saved.Address)
	assert.Equal(t, models.RoleStoreOwner, saved.Role)

	err = repo.Update(ctx(), &models.User{ID: "missing", Name: "x", Email: "missing@example.com", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
