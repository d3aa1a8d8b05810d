// Command seed imports the product catalog and tag set from CSV files.
//
//	seed -ingredients ingredients.csv -tags tags.csv
//
// ingredients.csv columns: name, measurement_unit
// tags.csv columns: name, color, slug
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/avelichko/foodgram-backend/config"
	"github.com/avelichko/foodgram-backend/internal/database"
	"github.com/avelichko/foodgram-backend/internal/models"
	"gorm.io/gorm"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to the ingredients CSV file")
	tagsPath := flag.String("tags", "", "path to the tags CSV file")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		log.Fatal("nothing to import: pass -ingredients and/or -tags")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if *ingredientsPath != "" {
		n, err := importProducts(db, *ingredientsPath)
		if err != nil {
			log.Fatalf("Failed to import products: %v", err)
		}
		log.Printf("Imported %d products from %s", n, *ingredientsPath)
	}

	if *tagsPath != "" {
		n, err := importTags(db, *tagsPath)
		if err != nil {
			log.Fatalf("Failed to import tags: %v", err)
		}
		log.Printf("Imported %d tags from %s", n, *tagsPath)
	}
}

func importProducts(db *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		product := models.Product{
			Name:            row[0],
			MeasurementUnit: row[1],
		}
		if err := db.Create(&product).Error; err != nil {
			return count, fmt.Errorf("row %q: %w", row[0], err)
		}
		count++
	}
	return count, nil
}

func importTags(db *gorm.DB, path string) (int, error) {
	rows, err := readCSV(path, 3)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		tag := models.Tag{
			Name:  row[0],
			Color: row[1],
			Slug:  row[2],
		}
		if err := db.Create(&tag).Error; err != nil {
			return count, fmt.Errorf("row %q: %w", row[0], err)
		}
		count++
	}
	return count, nil
}

func readCSV(path string, wantFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = wantFields

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
