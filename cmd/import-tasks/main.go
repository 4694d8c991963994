package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"despacho_app_go/config"
	"despacho_app_go/db"
	"despacho_app_go/models"
	"despacho_app_go/services"
	"despacho_app_go/store"
)

// Loads tasks from an Excel workbook into the local snapshot. Rows whose
// expediente matches an existing case become case tasks; the rest become
// dashboard tasks.
func main() {
	path := flag.String("file", "", "path to the .xlsx workbook")
	signer := flag.String("by", "importador", "name recorded as the task creator")
	flag.Parse()

	if *path == "" {
		log.Fatal("Usage: import-tasks -file tareas.xlsx [-by name]")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize local snapshot database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	imported, rowErrs, err := services.ParseTaskWorkbook(f)
	if err != nil {
		log.Fatalf("Failed to parse workbook: %v", err)
	}

	st, err := store.New(store.Options{Local: services.NewLocalStore(db.DB)})
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	byExpediente := map[string]string{}
	for _, c := range st.GetCases() {
		if c.Expediente != "" {
			byExpediente[c.Expediente] = c.ID
		}
	}

	matched, floating := 0, 0
	for _, row := range imported {
		caseID := byExpediente[row.Expediente]
		if caseID == "" {
			st.PushDashboardTask(models.DashboardTask{
				Title:  row.Title,
				Date:   row.Date,
				Urgent: row.Urgent,
			})
			floating++
			continue
		}
		if _, err := st.AddTask(caseID, store.TaskInput{
			Title:  row.Title,
			Date:   row.Date,
			Urgent: row.Urgent,
			By:     models.Signature{Name: *signer},
		}); err != nil {
			log.Printf("Failed to add task %q to case %s: %v", row.Title, caseID, err)
			continue
		}
		matched++
	}

	fmt.Println()
	fmt.Println("✓ Import finished")
	fmt.Printf("  Case tasks:      %d\n", matched)
	fmt.Printf("  Dashboard tasks: %d\n", floating)
	if len(rowErrs.Rows) > 0 {
		fmt.Printf("  Skipped rows:    %d\n", len(rowErrs.Rows))
		for _, msg := range rowErrs.Rows {
			fmt.Printf("    - %s\n", msg)
		}
	}
}
