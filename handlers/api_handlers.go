package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"skilltrack-server-go/db"
	"skilltrack-server-go/grid"
	"skilltrack-server-go/models"
	"skilltrack-server-go/tracker"
)

// APIHandler holds the dependencies for API handlers: the roster service,
// the sync engine and the workbook it operates on.
type APIHandler struct {
	RosterService *db.RedisService
	Engine        *tracker.Engine
	Workbook      *grid.Workbook
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(roster *db.RedisService, engine *tracker.Engine, workbook *grid.Workbook) *APIHandler {
	return &APIHandler{
		RosterService: roster,
		Engine:        engine,
		Workbook:      workbook,
	}
}

// --- Class Handlers ---

// GetAllClasses handles GET /api/classes
func (h *APIHandler) GetAllClasses(c *gin.Context) {
	classes, err := h.RosterService.GetAllClasses()
	if err != nil {
		log.Printf("Error in GetAllClasses handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve classes"})
		return
	}
	if classes == nil {
		// Return empty list instead of null for JSON consistency
		c.JSON(http.StatusOK, []models.Clazz{})
		return
	}
	c.JSON(http.StatusOK, classes)
}

// GetClassByKey handles GET /api/classes/:classKey
func (h *APIHandler) GetClassByKey(c *gin.Context) {
	classKey := c.Param("classKey")
	if classKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class key is required"})
		return
	}

	clazz, err := h.RosterService.GetClassByKey(classKey)
	if err != nil {
		log.Printf("Error in GetClassByKey handler for key %s: %v", classKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve class details"})
		return
	}

	if clazz == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	c.JSON(http.StatusOK, clazz)
}

// AddClass handles POST /api/classes
func (h *APIHandler) AddClass(c *gin.Context) {
	var newClass models.Clazz
	if err := c.ShouldBindJSON(&newClass); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if newClass.Program == "" || newClass.Day == "" || newClass.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class program, day and time are required"})
		return
	}

	err := h.RosterService.AddClass(newClass)
	if err != nil {
		log.Printf("Error in AddClass handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add class"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"class": newClass, "key": newClass.Key()})
}

// --- Student Handlers ---

// GetStudentsByClass handles GET /api/classes/:classKey/students
func (h *APIHandler) GetStudentsByClass(c *gin.Context) {
	classKey := c.Param("classKey")
	if classKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class key is required"})
		return
	}

	// Optional: Check if class exists first
	exists, err := h.RosterService.ClassExists(classKey)
	if err != nil {
		log.Printf("Error checking class existence in GetStudentsByClass handler for key %s: %v", classKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify class"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	students, err := h.RosterService.GetStudentsByClassKey(classKey)
	if err != nil {
		log.Printf("Error in GetStudentsByClass handler for key %s: %v", classKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve students for the class"})
		return
	}
	if students == nil {
		c.JSON(http.StatusOK, []models.Student{})
		return
	}

	c.JSON(http.StatusOK, students)
}

// GetRandomStudent handles GET /api/classes/:classKey/random-student
func (h *APIHandler) GetRandomStudent(c *gin.Context) {
	classKey := c.Param("classKey")
	if classKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class key is required"})
		return
	}

	student, err := h.RosterService.GetRandomStudent(classKey)
	if err != nil {
		log.Printf("Error in GetRandomStudent handler for key %s: %v", classKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get random student"})
		return
	}

	if student == nil {
		// Could mean class not found, or class has no students.
		exists, _ := h.RosterService.ClassExists(classKey)
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"message": "Class not found"})
		} else {
			c.JSON(http.StatusNotFound, gin.H{"message": "No students found in this class"})
		}
		return
	}

	c.JSON(http.StatusOK, student)
}

// --- Sync Handler ---

// RunSync handles POST /api/sync. The body carries the ClassKey fields; the
// response is the engine's SyncSummary rendered as JSON. Only a missing
// collaborator fails the request outright; everything the engine recovered
// from is inside the summary.
func (h *APIHandler) RunSync(c *gin.Context) {
	var key models.ClassKey
	if err := c.ShouldBindJSON(&key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if key.Program == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class program is required"})
		return
	}

	summary, err := h.Engine.RunSync(key)
	if err != nil {
		log.Printf("Sync failed for class %s: %v", key.Key(), err)
		if errors.Is(err, tracker.ErrRosterUnavailable) ||
			errors.Is(err, tracker.ErrSkillTableUnavailable) ||
			errors.Is(err, tracker.ErrGridUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed: " + err.Error()})
		return
	}

	if err := h.Workbook.Save(); err != nil {
		log.Printf("Error saving workbook after sync for class %s: %v", key.Key(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync ran but the workbook could not be saved", "summary": summary})
		return
	}

	message := "Sync complete"
	if summary.SkillCount == 0 {
		message = "Sync complete: no skills found for this class"
	}
	log.Printf("Sync for class %s: pushed %d inserted / %d updated, pulled %d changed, %d unresolved, %d errors",
		key.Key(), summary.Pushed.Inserted, summary.Pushed.Updated, summary.Pulled.Changed,
		len(summary.Unresolved), len(summary.Errors))
	c.JSON(http.StatusOK, gin.H{"message": message, "summary": summary})
}

// --- Skill Table Handler ---

// AddCanonicalStudent handles POST /api/skill-table/students. It registers a
// student row in the canonical skill table so later syncs can resolve them.
func (h *APIHandler) AddCanonicalStudent(c *gin.Context) {
	var identity models.StudentIdentity
	if err := c.ShouldBindJSON(&identity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if identity.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First name is required"})
		return
	}

	rowIndex, err := h.Workbook.SkillTable().AppendStudent(identity.FirstName, identity.LastName)
	if err != nil {
		log.Printf("Error adding canonical student %s: %v", identity.FullName(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add student to the skill table"})
		return
	}
	if err := h.Workbook.Save(); err != nil {
		log.Printf("Error saving workbook after adding canonical student: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Student added but the workbook could not be saved"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rowIndex": rowIndex, "student": identity})
}

// --- Import Handler ---

// ImportStudents handles POST /api/import/students
func (h *APIHandler) ImportStudents(c *gin.Context) {
	// Get classKey from form data
	classKey := c.PostForm("classKey")
	if classKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing 'classKey' in form data"})
		return
	}

	// Get file from form data
	file, header, err := c.Request.FormFile("file") // "file" is the name attribute in the form
	if err != nil {
		log.Printf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	log.Printf("Received file upload: %s for class: %s", header.Filename, classKey)

	// Call the service layer to process the import
	importedCount, err := h.RosterService.ImportStudentsFromExcel(file, classKey)
	if err != nil {
		log.Printf("Error importing students from file %s for class %s: %v", header.Filename, classKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to import students: " + err.Error()})
		return
	}

	// Success response
	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": importedCount,
		"classKey":      classKey,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
