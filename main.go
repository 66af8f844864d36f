package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"skilltrack-server-go/db"
	"skilltrack-server-go/grid"
	"skilltrack-server-go/handlers"
	"skilltrack-server-go/models"
	"skilltrack-server-go/tracker"
)

// Key used to check whether any roster data exists yet (matches the db
// package's class set key).
const classesKeyForCheck = "classes"

func main() {
	// Load .env if present; real env vars win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	redisAddr := envOr("REDIS_ADDR", "127.0.0.1:6379")
	redisDB, err := strconv.Atoi(envOr("REDIS_DB", "8"))
	if err != nil {
		log.Fatalf("Invalid REDIS_DB: %v", err)
	}
	workbookPath := envOr("WORKBOOK_PATH", "tracker.xlsx")
	port := envOr("PORT", ":8080")

	// Initialize Redis Client
	redisClient := db.InitializeRedisClient(redisAddr, redisDB)

	// Create Roster Service
	rosterService := db.NewRedisService(redisClient)

	// Open (or create) the tracking workbook
	workbook, err := grid.OpenWorkbook(workbookPath)
	if err != nil {
		log.Fatalf("Failed to open workbook %s: %v", workbookPath, err)
	}
	defer func() {
		if err := workbook.Close(); err != nil {
			log.Printf("Error closing workbook: %v", err)
		}
	}()

	// Check and add initial test data
	checkAndSeedData(redisClient, rosterService, workbook)

	// Create the sync engine over its three collaborators
	engine := tracker.NewEngine(rosterService, workbook.SkillTable(), workbook.Tracker())

	// Create API Handler (injecting the service, engine and workbook)
	apiHandler := handlers.NewAPIHandler(rosterService, engine, workbook)

	// Initialize Gin router
	router := gin.Default()

	// Setup API routes
	api := router.Group("/api")
	{
		// Class routes
		api.GET("/classes", apiHandler.GetAllClasses)
		api.GET("/classes/:classKey", apiHandler.GetClassByKey)
		api.POST("/classes", apiHandler.AddClass)

		// Student routes within a class
		api.GET("/classes/:classKey/students", apiHandler.GetStudentsByClass)
		api.GET("/classes/:classKey/random-student", apiHandler.GetRandomStudent)

		// Sync command surface
		api.POST("/sync", apiHandler.RunSync)

		// Canonical skill table
		api.POST("/skill-table/students", apiHandler.AddCanonicalStudent)

		// Import route
		api.POST("/import/students", apiHandler.ImportStudents)

		// Ping route
		api.GET("/ping", handlers.PingHandler)
	}

	// Start the server
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// envOr returns the env var value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// checkAndSeedData checks whether roster data already exists in Redis and
// seeds test data when it does not.
func checkAndSeedData(client *redis.Client, service *db.RedisService, workbook *grid.Workbook) {
	ctx := context.Background()
	count, err := client.SCard(ctx, classesKeyForCheck).Result()

	// redis.Nil also means the key does not exist, which is fine here.
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("Warning: could not check for existing data (key: %s): %v. Skipping seed.", classesKeyForCheck, err)
		return
	}

	if count == 0 {
		log.Printf("No existing class data found in Redis (key: '%s'). Seeding initial test data...", classesKeyForCheck)
		seedInitialData(service, workbook)
	} else {
		log.Printf("Found existing data in Redis (key: '%s', count: %d). Skipping seed.", classesKeyForCheck, count)
	}
}

// seedInitialData adds a couple of test classes, their students, and the
// matching skill table content so a sync has something to work against.
func seedInitialData(s *db.RedisService, workbook *grid.Workbook) {
	log.Println("Seeding initial test data...")

	class1 := models.Clazz{
		ClassKey:   models.ClassKey{Program: "Stage 1", Day: "Monday", Time: "16:00", Site: "Main Pool"},
		Name:       "Stage 1 Monday Afternoon",
		Instructor: "J. Rivera",
	}
	class2 := models.Clazz{
		ClassKey:   models.ClassKey{Program: "Stage 2", Day: "Wednesday", Time: "17:00", Site: "Main Pool"},
		Name:       "Stage 2 Wednesday Evening",
		Instructor: "M. Chen",
	}

	if err := s.AddClass(class1); err != nil {
		log.Printf("Error adding test class %s: %v", class1.Key(), err)
	}
	if err := s.AddClass(class2); err != nil {
		log.Printf("Error adding test class %s: %v", class2.Key(), err)
	}

	students := []models.Student{
		{ID: "ST-0001", FirstName: "Alex", LastName: "Smith", ClassID: class1.Key()},
		{ID: "ST-0002", FirstName: "Jordan", LastName: "Lee", ClassID: class1.Key()},
		{ID: "ST-0003", FirstName: "Sam", LastName: "Okafor", ClassID: class2.Key()},
	}
	for _, student := range students {
		if err := s.AddStudent(student); err != nil {
			log.Printf("Error adding test student %s: %v", student.ID, err)
		}
	}

	// Seed the canonical skill table: a few Stage 1 / Stage 2 skill columns
	// after the identity columns, plus a row per seeded student.
	table := workbook.SkillTable()
	skills := []string{"S1 Front Float", "S1 Back Float", "S1 Kick with Board", "S2 Front Crawl", "S2 Back Crawl"}
	for i, name := range skills {
		if err := table.WriteHeader(2+i, name); err != nil {
			log.Printf("Error seeding skill header %q: %v", name, err)
		}
	}
	for _, student := range students {
		if _, err := table.AppendStudent(student.FirstName, student.LastName); err != nil {
			log.Printf("Error seeding canonical row for %s %s: %v", student.FirstName, student.LastName, err)
		}
	}
	if err := workbook.Save(); err != nil {
		log.Printf("Error saving workbook after seeding: %v", err)
	}

	log.Println("Initial test data seeding complete.")
}
