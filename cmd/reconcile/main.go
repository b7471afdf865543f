// Command reconcile recomputes every product's stock counter from its opening stock
// plus the signed sum of its live transactions. Run it when drift is suspected; it is
// idempotent and safe to repeat.
package main

import (
	"flag"
	"log"

	"go-stocktrack/internal/model"
	"go-stocktrack/internal/repository"
	"go-stocktrack/internal/service"
	"go-stocktrack/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("actor", "admin@example.com", "email of the user the repair is attributed to")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	db := database.ConnectDB()

	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("Actor %s not found in database: %v", *email, err)
	}

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	logRepo := repository.NewActionLogRepo(db)
	ledger := service.NewLedgerService(db, productRepo, txRepo, logRepo, nil)

	repaired, err := ledger.ReconcileStock(service.Actor{ID: user.ID, Name: user.FullName})
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	if repaired == 0 {
		log.Println("All stock counters consistent, nothing to repair")
		return
	}
	log.Printf("Repaired %d product stock counters", repaired)
}
