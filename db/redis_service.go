package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/xuri/excelize/v2"

	"skilltrack-server-go/models"
)

const (
	classesKey          = "classes"  // Set: Stores all class keys
	classInfoPrefix     = "class:"   // Hash prefix: class:{key} -> stores class details
	classStudentsPrefix = "class:"   // Set prefix: class:{key}:students -> stores student IDs for a class
	studentInfoPrefix   = "student:" // Hash prefix: student:{id} -> stores student details
)

// RedisService is the roster store: classes keyed by their normalized
// ClassKey string, each with a set of enrolled students.
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context // Base context
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{
		Client: client,
		Ctx:    context.Background(), // Use a background context as base
	}
}

// Helper to generate class info key
func getClassInfoKey(classKey string) string {
	return classInfoPrefix + classKey
}

// Helper to generate class students set key
func getClassStudentsKey(classKey string) string {
	return classStudentsPrefix + classKey + ":students"
}

// Helper to generate student info key
func getStudentInfoKey(studentID string) string {
	return studentInfoPrefix + studentID
}

// --- Class Operations ---

// AddClass adds a new class to Redis
func (s *RedisService) AddClass(clazz models.Clazz) error {
	if clazz.Program == "" || clazz.Day == "" || clazz.Time == "" {
		return errors.New("class Program, Day and Time cannot be empty")
	}
	key := clazz.Key()
	classKey := getClassInfoKey(key)
	pipe := s.Client.Pipeline()

	// Add class key to the global set of classes
	pipe.SAdd(s.Ctx, classesKey, key)
	// Store class details in a Hash
	pipe.HMSet(s.Ctx, classKey, map[string]interface{}{
		"program":    clazz.Program,
		"day":        clazz.Day,
		"time":       clazz.Time,
		"site":       clazz.Site,
		"name":       clazz.Name,
		"instructor": clazz.Instructor,
	})

	_, err := pipe.Exec(s.Ctx)
	if err != nil {
		log.Printf("Error adding class %s: %v", key, err)
		return fmt.Errorf("failed to add class to Redis: %w", err)
	}
	log.Printf("Added class: %s (%s)", clazz.Name, key)
	return nil
}

// GetClassByKey retrieves a class by its normalized key
func (s *RedisService) GetClassByKey(key string) (*models.Clazz, error) {
	classKey := getClassInfoKey(key)
	data, err := s.Client.HGetAll(s.Ctx, classKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found is not necessarily an error in API context
		}
		log.Printf("Error getting class %s: %v", key, err)
		return nil, fmt.Errorf("failed to get class from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil // Not found
	}

	return &models.Clazz{
		ClassKey: models.ClassKey{
			Program: data["program"],
			Day:     data["day"],
			Time:    data["time"],
			Site:    data["site"],
		},
		Name:       data["name"],
		Instructor: data["instructor"],
	}, nil
}

// GetAllClasses retrieves all classes
func (s *RedisService) GetAllClasses() ([]models.Clazz, error) {
	keys, err := s.Client.SMembers(s.Ctx, classesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Clazz{}, nil // No classes found
		}
		log.Printf("Error getting all class keys: %v", err)
		return nil, fmt.Errorf("failed to get class keys from Redis: %w", err)
	}

	classes := make([]models.Clazz, 0, len(keys))
	for _, key := range keys {
		clazz, err := s.GetClassByKey(key)
		if err != nil {
			// Log the error but continue trying to fetch others
			log.Printf("Error fetching details for class %s: %v", key, err)
			continue
		}
		if clazz != nil {
			classes = append(classes, *clazz)
		}
	}
	return classes, nil
}

// ClassExists checks if a class key exists in the classes set
func (s *RedisService) ClassExists(key string) (bool, error) {
	exists, err := s.Client.SIsMember(s.Ctx, classesKey, key).Result()
	if err != nil {
		log.Printf("Error checking existence for class %s: %v", key, err)
		return false, fmt.Errorf("failed to check class existence: %w", err)
	}
	return exists, nil
}

// --- Student Operations ---

// AddStudent adds a student to a class
func (s *RedisService) AddStudent(student models.Student) error {
	if student.ID == "" || student.FirstName == "" || student.ClassID == "" {
		return errors.New("student ID, FirstName, and ClassID cannot be empty")
	}

	// Check if class exists (optional, but good practice)
	exists, err := s.ClassExists(student.ClassID)
	if err != nil {
		return err // Error checking existence
	}
	if !exists {
		return fmt.Errorf("student's class %s does not exist", student.ClassID)
	}

	studentKey := getStudentInfoKey(student.ID)
	classStudentsKey := getClassStudentsKey(student.ClassID)

	pipe := s.Client.Pipeline()
	// Add student ID to the class's set of students
	pipe.SAdd(s.Ctx, classStudentsKey, student.ID)
	// Store student details in a Hash
	pipe.HMSet(s.Ctx, studentKey, map[string]interface{}{
		"id":        student.ID,
		"firstName": student.FirstName,
		"lastName":  student.LastName,
		"classId":   student.ClassID,
	})

	_, execErr := pipe.Exec(s.Ctx)
	if execErr != nil {
		log.Printf("Error adding student %s to class %s: %v", student.ID, student.ClassID, execErr)
		return fmt.Errorf("failed to add student to Redis: %w", execErr)
	}
	return nil
}

// GetStudentByID retrieves a student by their ID
func (s *RedisService) GetStudentByID(studentID string) (*models.Student, error) {
	studentKey := getStudentInfoKey(studentID)
	data, err := s.Client.HGetAll(s.Ctx, studentKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found
		}
		log.Printf("Error getting student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to get student from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil // Not found
	}

	return &models.Student{
		ID:        data["id"],
		FirstName: data["firstName"],
		LastName:  data["lastName"],
		ClassID:   data["classId"],
	}, nil
}

// GetStudentsByClassKey retrieves all students for a given class key
func (s *RedisService) GetStudentsByClassKey(key string) ([]models.Student, error) {
	classStudentsKey := getClassStudentsKey(key)
	studentIDs, err := s.Client.SMembers(s.Ctx, classStudentsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Student{}, nil // No students in this class
		}
		log.Printf("Error getting student IDs for class %s: %v", key, err)
		return nil, fmt.Errorf("failed to get student IDs from Redis for class %s: %w", key, err)
	}

	students := make([]models.Student, 0, len(studentIDs))
	for _, id := range studentIDs {
		student, err := s.GetStudentByID(id)
		if err != nil {
			log.Printf("Error fetching details for student %s in class %s: %v", id, key, err)
			continue // Skip this student if details can't be fetched
		}
		if student != nil {
			students = append(students, *student)
		}
	}
	return students, nil
}

// GetEnrolledStudents returns the ephemeral identities of a class's roster,
// in store order. This is the sync engine's RosterStore contract.
func (s *RedisService) GetEnrolledStudents(key models.ClassKey) ([]models.StudentIdentity, error) {
	students, err := s.GetStudentsByClassKey(key.Key())
	if err != nil {
		return nil, err
	}
	identities := make([]models.StudentIdentity, 0, len(students))
	for _, student := range students {
		identities = append(identities, student.Identity())
	}
	return identities, nil
}

// GetRandomStudent selects a random student from a class
func (s *RedisService) GetRandomStudent(key string) (*models.Student, error) {
	classStudentsKey := getClassStudentsKey(key)

	// Use SRANDMEMBER to get one random member ID
	randomStudentID, err := s.Client.SRandMember(s.Ctx, classStudentsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Class exists but has no students, or key doesn't exist
		}
		log.Printf("Error getting random student ID for class %s: %v", key, err)
		return nil, fmt.Errorf("failed to get random student ID from Redis for class %s: %w", key, err)
	}

	if randomStudentID == "" {
		return nil, nil // Set exists but is empty, SRandMember returns ""
	}

	// Fetch the details of the randomly selected student
	return s.GetStudentByID(randomStudentID)
}

// --- Excel Import ---

// ImportStudentsFromExcel reads an Excel file stream and adds students to the
// specified class. Expected columns: A = student ID, B = first name,
// C = last name; row 1 is the header.
func (s *RedisService) ImportStudentsFromExcel(file io.Reader, classKey string) (int, error) {
	// The target class must already be registered; its key carries the
	// program/day/time/site fields the sync engine filters on.
	exists, err := s.ClassExists(classKey)
	if err != nil {
		return 0, fmt.Errorf("failed to check class existence before import: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("import target class %s does not exist", classKey)
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		log.Printf("Error opening Excel reader: %v", err)
		return 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		// Close the spreadsheet.
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	// Assuming data is in the first sheet
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		log.Printf("Error getting rows from sheet '%s': %v", sheetName, err)
		return 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	importedCount := 0
	studentsToAdd := []models.Student{}

	// Start from row 1 (index 1) to skip header (assuming row 0 is header)
	for i, row := range rows {
		if i == 0 {
			continue // Skip header row
		}

		var studentID, firstName, lastName string
		if len(row) > 0 {
			studentID = row[0]
		}
		if len(row) > 1 {
			firstName = row[1]
		}
		if len(row) > 2 {
			lastName = row[2]
		}

		// Basic validation
		if studentID == "" || firstName == "" {
			log.Printf("Skipping row %d due to missing ID or first name (ID: '%s', First: '%s')", i+1, studentID, firstName)
			continue
		}

		studentsToAdd = append(studentsToAdd, models.Student{
			ID:        studentID,
			FirstName: firstName,
			LastName:  lastName,
			ClassID:   classKey,
		})
	}

	log.Printf("Attempting to add %d students from Excel file to class %s", len(studentsToAdd), classKey)
	for _, student := range studentsToAdd {
		err := s.AddStudent(student)
		if err != nil {
			log.Printf("Error adding student %s %s (%s) during import: %v", student.FirstName, student.LastName, student.ID, err)
			continue // Continue processing other students
		}
		importedCount++
	}

	log.Printf("Successfully imported %d students into class %s", importedCount, classKey)
	return importedCount, nil
}

// --- Utility ---

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(addr string, database int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       database,
	})

	// Ping Redis to check connection
	_, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}

	log.Printf("Successfully connected to Redis at %s (DB %d)", addr, database)
	return rdb
}
