package main

import (
	"fmt"
	"os"
	"time"

	"clinic-portal/constants"
	"clinic-portal/database"
	"clinic-portal/models/user"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate - Run database migrations")
		fmt.Println("  go run tools/migrate.go seed    - Seed demo users (dev only)")
		return
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		if _, err := database.InitDB(); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Migration completed successfully!")

	case "seed":
		fmt.Println("🌱 Seeding demo users...")
		db, err := database.InitDB()
		if err != nil {
			fmt.Printf("❌ Could not connect: %v\n", err)
			os.Exit(1)
		}

		dob := time.Date(1985, time.March, 12, 0, 0, 0, 0, time.UTC)
		email := "jane.roe@example.org"
		demo := []user.User{
			{
				Uuid:        uuid.NewString(),
				Username:    "dr.house",
				LegalName:   "Gregory House",
				Role:        user.RoleDoctor,
				Phone:       "+15550100001",
				Specialty:   "Diagnostics",
				Permissions: user.StringSlice{constants.PermDoctorFull},
			},
			{
				Uuid:        uuid.NewString(),
				Username:    "jane.roe",
				LegalName:   "Jane Roe",
				Role:        user.RolePatient,
				Phone:       "+15550100002",
				Email:       &email,
				DateOfBirth: &dob,
				Permissions: user.StringSlice{constants.PermPatientFull},
			},
			{
				Uuid:        uuid.NewString(),
				Username:    "admin",
				LegalName:   "Portal Admin",
				Role:        user.RoleAdmin,
				Phone:       "+15550100003",
				Permissions: user.StringSlice{constants.PermAdminFull},
			},
		}

		for i := range demo {
			if err := db.Where("username = ?", demo[i].Username).FirstOrCreate(&demo[i]).Error; err != nil {
				fmt.Printf("❌ Failed to seed %s: %v\n", demo[i].Username, err)
				os.Exit(1)
			}
		}
		fmt.Println("✅ Seeding completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: migrate, seed")
	}
}
