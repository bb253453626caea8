package models

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

This file contains functionality to generate a report of database columns that aren't
accounted for as variables in the corresponding Go model structs.

To generate the report:

1. Set the environment variable: GENERATE_COLUMN_REPORT=true
2. Run the application: go run main.go

The report will show:
- Each table name
- List of columns that exist in the database but not in the Go model
- Summary of total mismatched columns across all tables

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: builders ---
Found 1 columns not accounted for in model:
  - clerk_id

--- Table: project_votes ---
All columns are accounted for in the model.

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Image{},
		&Builder{},
		&Week{},
		&TechTag{},
		&DomainTag{},
		&Project{},
		&ProjectParticipant{},
		&ProjectVote{},
	}
}

// Migrate creates or updates every table, join table and index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

func GenerateModels(db *gorm.DB) {
	// First, ensure the database is ready
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Set up verbose logging for migration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
		Logger:                 newLogger,
	})

	fmt.Println("Migrating models...")
	if err := Migrate(migrateDB); err != nil {
		fmt.Printf("Error during models migration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database migration completed successfully!")

	GenerateColumnMismatchReport(db)

	g.Execute()
	fmt.Println("Model generation complete!")
}

// GenerateColumnMismatchReport generates a report of database columns that aren't accounted for in Go models
func GenerateColumnMismatchReport(db *gorm.DB) {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	fmt.Println("Generating report of database columns not accounted for in Go models...")

	// Define model mappings (table name -> struct type)
	modelMappings := map[string]interface{}{
		"images":               Image{},
		"builders":             Builder{},
		"weeks":                Week{},
		"tech_tags":            TechTag{},
		"domain_tags":          DomainTag{},
		"projects":             Project{},
		"project_participants": ProjectParticipant{},
		"project_votes":        ProjectVote{},
	}

	totalMismatches := 0

	for tableName, modelStruct := range modelMappings {
		fmt.Printf("\n--- Table: %s ---\n", tableName)

		// Get database columns
		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Printf("Table does not exist yet (will be created during migration)\n")
			} else {
				fmt.Printf("Error getting columns for table %s: %v\n", tableName, err)
			}
			continue
		}

		// Get model fields
		modelFields := getModelFields(db, modelStruct)

		// Find mismatches
		mismatches := findColumnMismatches(dbColumns, modelFields)

		if len(mismatches) > 0 {
			fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Printf("  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Println("All columns are accounted for in the model.")
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name 
		FROM information_schema.columns 
		WHERE table_name = ? 
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`

	err := db.Raw(query, tableName).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	// Check if table exists
	if len(columns) == 0 {
		// Verify if table exists
		var tableExists bool
		tableQuery := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables 
				WHERE table_schema = CURRENT_SCHEMA() 
				AND table_name = ?
			)
		`
		if err := db.Raw(tableQuery, tableName).Scan(&tableExists).Error; err != nil {
			return nil, fmt.Errorf("error checking if table %s exists: %w", tableName, err)
		}

		if !tableExists {
			return nil, fmt.Errorf("table %s does not exist", tableName)
		}
	}

	return columns, nil
}

// getModelFields returns the column names GORM maps the model to.
func getModelFields(db *gorm.DB, model interface{}) []string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		fmt.Printf("Error parsing model %T: %v\n", model, err)
		return nil
	}

	var fields []string
	for _, field := range stmt.Schema.Fields {
		if field.DBName != "" {
			fields = append(fields, field.DBName)
		}
	}
	return fields
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool)
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}

// GenerateColumnMismatchReportStandalone generates a report without running migrations
func GenerateColumnMismatchReportStandalone(db *gorm.DB) {
	// First, ensure the database is ready
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	GenerateColumnMismatchReport(db)
}
