package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// ShoppingListService turns a user's shopping cart into a downloadable
// shopping list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type productTotal struct {
	name   string
	amount float64
	// unit is the measurement unit recorded at first encounter of the
	// product name. Totals are keyed by product name, not product id, so
	// two catalog entries sharing a name are summed under the first unit
	// seen. Documented behavior carried over from the original system.
	unit string
}

// BuildReport walks the user's cart newest-first and produces the CSV
// records of the shopping list: one block per recipe listing its
// ingredients, then a Sum section totalling every product name across all
// recipes in the cart.
func (s *ShoppingListService) BuildReport(ctx context.Context, userID uuid.UUID) ([][]string, error) {
	db := s.db.WithContext(ctx)

	var cart []models.ShoppingCart
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cart).Error; err != nil {
		return nil, err
	}

	records := [][]string{{"Shopping list"}}

	totals := make(map[string]*productTotal)
	var order []string

	for i, row := range cart {
		var recipe models.Recipe
		if err := db.First(&recipe, "id = ?", row.RecipeID).Error; err != nil {
			return nil, err
		}
		records = append(records, []string{"Recipe #", strconv.Itoa(i + 1), recipe.Name})

		var ingredients []models.RecipeIngredient
		if err := db.Where("recipe_id = ?", recipe.ID).Order("created_at").Find(&ingredients).Error; err != nil {
			return nil, err
		}
		for j, ing := range ingredients {
			var product models.Product
			if err := db.First(&product, "id = ?", ing.ProductID).Error; err != nil {
				return nil, err
			}
			records = append(records, []string{
				strconv.Itoa(j + 1),
				product.Name,
				formatAmount(ing.Amount),
				product.MeasurementUnit,
			})

			if total, ok := totals[product.Name]; ok {
				total.amount += ing.Amount
			} else {
				totals[product.Name] = &productTotal{
					name:   product.Name,
					amount: ing.Amount,
					unit:   product.MeasurementUnit,
				}
				order = append(order, product.Name)
			}
		}
		records = append(records, []string{""})
	}

	records = append(records, []string{"Sum"})
	for i, name := range order {
		total := totals[name]
		records = append(records, []string{
			strconv.Itoa(i + 1),
			total.name,
			formatAmount(total.amount),
			total.unit,
		})
	}

	return records, nil
}

// WriteCSV renders the report with comma delimiters and double-quote quoting
func (s *ShoppingListService) WriteCSV(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
