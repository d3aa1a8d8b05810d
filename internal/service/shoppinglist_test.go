package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/foodgram-backend/internal/models"
	"github.com/avelichko/foodgram-backend/internal/testhelpers"
)

func TestBuildReportAggregatesByProductName(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)

	author := testhelpers.CreateUser(t, db, "chef", "chef@example.com")
	buyer := testhelpers.CreateUser(t, db, "buyer", "buyer@example.com")
	flour := testhelpers.CreateProduct(t, db, "flour", "g")
	milk := testhelpers.CreateProduct(t, db, "milk", "ml")

	pancakes := testhelpers.CreateRecipe(t, db, author, "Pancakes", nil, []testhelpers.IngredientFixture{
		{Product: flour, Amount: 200},
		{Product: milk, Amount: 500},
	})
	bread := testhelpers.CreateRecipe(t, db, author, "Bread", nil, []testhelpers.IngredientFixture{
		{Product: flour, Amount: 300},
	})

	// bread added last, so it leads the newest-first report
	now := time.Now()
	require.NoError(t, db.Create(&models.ShoppingCart{
		UserID: buyer.ID, RecipeID: pancakes.ID, CreatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.ShoppingCart{
		UserID: buyer.ID, RecipeID: bread.ID, CreatedAt: now.Add(time.Second),
	}).Error)

	records, err := svc.BuildReport(context.Background(), buyer.ID)
	require.NoError(t, err)

	want := [][]string{
		{"Shopping list"},
		{"Recipe #", "1", "Bread"},
		{"1", "flour", "300", "g"},
		{""},
		{"Recipe #", "2", "Pancakes"},
		{"1", "flour", "200", "g"},
		{"2", "milk", "500", "ml"},
		{""},
		{"Sum"},
		{"1", "flour", "500", "g"},
		{"2", "milk", "500", "ml"},
	}
	assert.Equal(t, want, records)
}

// Totals are keyed by product name. Two catalog entries named "sugar" with
// different units still collapse into one Sum line carrying the unit of the
// first entry encountered.
func TestBuildReportUnitAtFirstEncounter(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)

	author := testhelpers.CreateUser(t, db, "chef", "chef@example.com")
	buyer := testhelpers.CreateUser(t, db, "buyer", "buyer@example.com")
	sugarGrams := testhelpers.CreateProduct(t, db, "sugar", "g")
	sugarSpoons := testhelpers.CreateProduct(t, db, "sugar", "tbsp")

	recipe := testhelpers.CreateRecipe(t, db, author, "Syrup", nil, []testhelpers.IngredientFixture{
		{Product: sugarGrams, Amount: 100},
		{Product: sugarSpoons, Amount: 2},
	})
	require.NoError(t, db.Create(&models.ShoppingCart{UserID: buyer.ID, RecipeID: recipe.ID}).Error)

	records, err := svc.BuildReport(context.Background(), buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sum"}, records[len(records)-2])
	assert.Equal(t, []string{"1", "sugar", "102", "g"}, records[len(records)-1])
}

func TestBuildReportEmptyCart(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)
	buyer := testhelpers.CreateUser(t, db, "buyer", "buyer@example.com")

	records, err := svc.BuildReport(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Shopping list"}, {"Sum"}}, records)
}

func TestWriteCSV(t *testing.T) {
	svc := NewShoppingListService(nil)

	var buf bytes.Buffer
	err := svc.WriteCSV(&buf, [][]string{
		{"Shopping list"},
		{"1", "flour", "500", "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Shopping list\n1,flour,500,g\n", buf.String())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "500", formatAmount(500))
	assert.Equal(t, "2.5", formatAmount(2.5))
	assert.Equal(t, "0.25", formatAmount(0.25))
}
