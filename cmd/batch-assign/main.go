package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	intconfig "github.com/Josemaria4581/busconnect/internal/config"
	"github.com/Josemaria4581/busconnect/internal/repositories"
	"github.com/Josemaria4581/busconnect/internal/services"
	"github.com/Josemaria4581/busconnect/internal/tacho"
)

// batch-assign walks every pending trip in departure order and tries to
// confirm it with the first driver the compliance rules allow. Meant for
// cron; exits non-zero only on infrastructure failure, a trip nobody can
// take is a normal outcome.
func main() {
	dryRun := flag.Bool("dry-run", false, "evalúa sin escribir asignaciones")
	flag.Parse()

	env := intconfig.LoadEnv()
	intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	svc := services.AssignmentService{
		TripRepo:   repositories.TripRepository{},
		DriverRepo: repositories.DriverRepository{},
		BusRepo:    repositories.BusRepository{},
		Loc:        env.Location(),
		RequestID:  "batch-assign",
	}
	if *dryRun {
		svc.PersistAssignment = func(tripID, driverID int64, busID *int64, _ func([]tacho.TripWindow) *tacho.Violation) error {
			log.Printf("[dry-run] viaje=%d conductor=%d", tripID, driverID)
			return nil
		}
	}

	res, err := svc.AssignPending()
	if err != nil {
		log.Printf("fallo del lote: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Procesados: %d | Asignados: %d | Sin conductor: %d\n",
		res.Processed, res.Assigned, res.Skipped)
}
