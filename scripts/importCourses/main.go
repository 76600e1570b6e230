package main

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"

	"academy/config"
	"academy/database"
	"academy/models/course"
)

// Imports the course catalogue from Courses.csv (or the path in argv[1]).
// Rows are matched on slug: new slugs are inserted, known ones updated.
// Existing enrollments keep the terms they were created with.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	path := "Courses.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	db := database.Database.Db
	inserted, updated, skipped := 0, 0, 0

	for i, row := range records[1:] {
		c := course.Course{
			Slug:         strings.ToLower(getField(row, headerIndex, "slug")),
			Title:        getField(row, headerIndex, "title"),
			Description:  getField(row, headerIndex, "description"),
			Author:       getField(row, headerIndex, "author"),
			Price:        parseFloat(getField(row, headerIndex, "price")),
			Currency:     strings.ToUpper(getField(row, headerIndex, "currency")),
			ThumbnailURL: getField(row, headerIndex, "thumbnail_url"),
			Status:       strings.ToUpper(getField(row, headerIndex, "status")),
			IsPublished:  parseBool(getField(row, headerIndex, "is_published")),
		}
		if days := parseInt(getField(row, headerIndex, "access_days")); days > 0 {
			c.AccessDays = &days
		}
		if c.Currency == "" {
			c.Currency = config.AppConfig.DefaultCurrency
		}
		switch c.Status {
		case course.CourseStatusDraft, course.CourseStatusActive, course.CourseStatusInactive:
		case "":
			c.Status = course.CourseStatusDraft
		default:
			log.Printf("Row %d: unknown status %q, skipping", i+2, c.Status)
			skipped++
			continue
		}

		if c.Slug == "" || c.Title == "" || c.Price < 0 {
			skipped++
			continue
		}

		var existing course.Course
		if err := db.Where("slug = ?", c.Slug).First(&existing).Error; err != nil {
			if err := db.Create(&c).Error; err != nil {
				log.Printf("Error inserting course %s: %v", c.Slug, err)
				continue
			}
			inserted++
			continue
		}

		existing.Title = c.Title
		existing.Description = c.Description
		existing.Author = c.Author
		existing.Price = c.Price
		existing.Currency = c.Currency
		existing.AccessDays = c.AccessDays
		existing.ThumbnailURL = c.ThumbnailURL
		existing.Status = c.Status
		existing.IsPublished = c.IsPublished
		if err := db.Omit("Modules").Save(&existing).Error; err != nil {
			log.Printf("Error updating course %s: %v", c.Slug, err)
			continue
		}
		updated++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
	log.Printf("Total processed: %d", inserted+updated+skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func parseInt(s string) int {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return val
}

func parseFloat(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val
}

func parseBool(s string) bool {
	val, err := strconv.ParseBool(s)
	return err == nil && val
}
