package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/database"
	"github.com/hirokisan/task-tracker-api/internal/dto"
	"github.com/hirokisan/task-tracker-api/internal/middleware"
	"github.com/hirokisan/task-tracker-api/internal/models"
	"github.com/hirokisan/task-tracker-api/internal/repository"
	"github.com/hirokisan/task-tracker-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite drives the task routes through the full router,
// including the auth and ownership middleware.
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	provider := &fakeProvider{}
	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	authService := services.NewAuthService(userRepo, provider)
	taskService := services.NewTaskService(taskRepo)
	handler := NewTaskHandler(taskService, authService)

	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	tasks := suite.router.Group("/tasks")
	tasks.Use(middleware.RequireAuth(provider))
	{
		tasks.POST("", handler.CreateTask)
		tasks.GET("", handler.ListTasks)
		tasks.GET("/status/:status", handler.ListTasksByStatus)
		tasks.GET("/:id", middleware.RequireTaskOwnership(), handler.GetTask)
		tasks.PUT("/:id", middleware.RequireTaskOwnership(), handler.UpdateTask)
		tasks.DELETE("/:id", handler.DeleteTask)
	}
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		ID:         "id-" + username,
		GivenName:  "Test",
		FamilyName: "User",
		Username:   username,
		Email:      username + "@example.com",
	}
	suite.db.Create(user)
	return user
}

// doRequest performs a request authenticated as the given username (the fake
// provider treats the bearer token as the username).
func (suite *TaskHandlerTestSuite) doRequest(method, url string, body any, username string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req.Header.Set("Authorization", "Bearer "+username)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) createTaskFor(username string, payload map[string]any) dto.TaskDTO {
	w := suite.doRequest(http.MethodPost, "/tasks", payload, username)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func validTaskPayload() map[string]any {
	return map[string]any{
		"title":       "Test Task",
		"description": "Test Description",
		"priority":    "low",
		"deadline":    time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func (suite *TaskHandlerTestSuite) TestCreateTask_DefaultsAndServerFields() {
	user := suite.createTestUser("alice")

	before := time.Now().UTC()
	task := suite.createTaskFor("alice", validTaskPayload())

	suite.Equal("Test Task", task.Title)
	suite.Equal("Test Description", task.Description)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityLow, task.Priority)
	suite.Equal(user.ID, task.UserID)
	suite.NotEmpty(task.ID)
	suite.WithinDuration(before, task.CreatedAt, 5*time.Second)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ExplicitStatusKept() {
	suite.createTestUser("alice")

	payload := validTaskPayload()
	payload["status"] = "in-progress"
	task := suite.createTaskFor("alice", payload)

	suite.Equal(models.TaskStatusInProgress, task.Status)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ServerAssignedFieldsNotOverridable() {
	user := suite.createTestUser("alice")

	payload := validTaskPayload()
	payload["id"] = "attacker-chosen"
	payload["created_at"] = "2000-01-01T00:00:00Z"
	payload["user_id"] = "someone-else"
	task := suite.createTaskFor("alice", payload)

	suite.NotEqual("attacker-chosen", task.ID)
	suite.Equal(user.ID, task.UserID)
	suite.True(task.CreatedAt.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidPriority() {
	suite.createTestUser("alice")

	payload := validTaskPayload()
	payload["priority"] = "urgent"
	w := suite.doRequest(http.MethodPost, "/tasks", payload, "alice")
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var count int64
	suite.NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingRequiredField() {
	suite.createTestUser("alice")

	payload := validTaskPayload()
	delete(payload, "title")
	w := suite.doRequest(http.MethodPost, "/tasks", payload, "alice")
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownSubject() {
	// Valid token, but the subject was never provisioned
	w := suite.doRequest(http.MethodPost, "/tasks", validTaskPayload(), "ghost")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_NoToken() {
	w := suite.doRequest(http.MethodPost, "/tasks", validTaskPayload(), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_OwnerScopedInsertionOrder() {
	suite.createTestUser("alice")
	suite.createTestUser("bob")

	payload := validTaskPayload()
	payload["title"] = "first"
	suite.createTaskFor("alice", payload)
	payload["title"] = "second"
	suite.createTaskFor("alice", payload)
	payload["title"] = "bobs"
	suite.createTaskFor("bob", payload)

	w := suite.doRequest(http.MethodGet, "/tasks", nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	suite.Require().Len(tasks, 2)
	suite.Equal("first", tasks[0].Title)
	suite.Equal("second", tasks[1].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_EmptyForNewUser() {
	suite.createTestUser("alice")

	w := suite.doRequest(http.MethodGet, "/tasks", nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	suite.Empty(tasks)
}

func (suite *TaskHandlerTestSuite) TestListTasksByStatus() {
	suite.createTestUser("alice")
	suite.createTestUser("bob")

	payload := validTaskPayload()
	payload["status"] = "done"
	payload["title"] = "finished"
	suite.createTaskFor("alice", payload)
	suite.createTaskFor("bob", payload)

	suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodGet, "/tasks/status/done", nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	suite.Require().Len(tasks, 1)
	suite.Equal("finished", tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasksByStatus_UnrecognizedStatus() {
	suite.createTestUser("alice")
	suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodGet, "/tasks/status/nonsense", nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	suite.Empty(tasks)
}

func (suite *TaskHandlerTestSuite) TestGetTask_RoundTrip() {
	suite.createTestUser("alice")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodGet, "/tasks/"+created.ID, nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var fetched dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Equal(created.ID, fetched.ID)
	suite.Equal(created.Title, fetched.Title)
	suite.Equal(created.Description, fetched.Description)
	suite.Equal(created.Status, fetched.Status)
	suite.Equal(created.Priority, fetched.Priority)
	suite.Equal(created.UserID, fetched.UserID)

	// The owner-list representation matches too
	w = suite.doRequest(http.MethodGet, "/tasks", nil, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var listed []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &listed))
	suite.Require().Len(listed, 1)
	suite.Equal(fetched.ID, listed[0].ID)
	suite.Equal(fetched.Title, listed[0].Title)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	suite.createTestUser("alice")

	w := suite.doRequest(http.MethodGet, "/tasks/missing", nil, "alice")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_ForeignOwnerGets404() {
	suite.createTestUser("alice")
	suite.createTestUser("bob")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodGet, "/tasks/"+created.ID, nil, "bob")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_OnlyPriority() {
	suite.createTestUser("alice")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodPut, "/tasks/"+created.ID, map[string]any{"priority": "high"}, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal(models.TaskPriorityHigh, updated.Priority)
	suite.Equal(created.Title, updated.Title)
	suite.Equal(created.Description, updated.Description)
	suite.Equal(created.Status, updated.Status)
	suite.WithinDuration(created.Deadline, updated.Deadline, time.Second)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NullDoesNotOverwrite() {
	suite.createTestUser("alice")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodPut, "/tasks/"+created.ID, map[string]any{
		"title":       "renamed",
		"description": nil,
	}, "alice")
	suite.Equal(http.StatusOK, w.Code)

	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("renamed", updated.Title)
	suite.Equal(created.Description, updated.Description)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidStatusLeavesTaskUntouched() {
	suite.createTestUser("alice")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodPut, "/tasks/"+created.ID, map[string]any{
		"title":  "should not stick",
		"status": "bogus",
	}, "alice")
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var stored models.Task
	suite.Require().NoError(suite.db.Where("id = ?", created.ID).First(&stored).Error)
	suite.Equal(created.Title, stored.Title)
	suite.Equal(created.Status, stored.Status)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ForeignOwnerGets404() {
	suite.createTestUser("alice")
	suite.createTestUser("bob")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodPut, "/tasks/"+created.ID, map[string]any{"title": "hijack"}, "bob")
	suite.Equal(http.StatusNotFound, w.Code)

	var stored models.Task
	suite.Require().NoError(suite.db.Where("id = ?", created.ID).First(&stored).Error)
	suite.Equal(created.Title, stored.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	suite.createTestUser("alice")

	w := suite.doRequest(http.MethodPut, "/tasks/missing", map[string]any{"title": "x"}, "alice")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ThenFetch404() {
	suite.createTestUser("alice")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodDelete, "/tasks/"+created.ID, nil, "alice")
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())

	w = suite.doRequest(http.MethodGet, "/tasks/"+created.ID, nil, "alice")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_MissingIDIsNoOp() {
	suite.createTestUser("alice")

	w := suite.doRequest(http.MethodDelete, "/tasks/never-existed", nil, "alice")
	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ForeignOwnerGets404() {
	suite.createTestUser("alice")
	suite.createTestUser("bob")
	created := suite.createTaskFor("alice", validTaskPayload())

	w := suite.doRequest(http.MethodDelete, "/tasks/"+created.ID, nil, "bob")
	suite.Equal(http.StatusNotFound, w.Code)

	var count int64
	suite.NoError(suite.db.Model(&models.Task{}).Where("id = ?", created.ID).Count(&count).Error)
	suite.EqualValues(1, count)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
