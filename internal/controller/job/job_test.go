package job

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/middleware"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/storage"
	"jobboard-backend/internal/testutil"
	"jobboard-backend/internal/validation"
)

var (
	testDB     *database.DBinstanceStruct
	testTokens = auth.NewTestTokenCodec()
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func router(store storage.StorageClient) *gin.Engine {
	jc := NewJobController(testDB, store)
	gated := func(schema validation.Schema, h gin.HandlerFunc, roles ...model.Role) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			validation.Request(schema),
			middleware.RequireAuth(testDB, testTokens),
			middleware.CheckRole(roles...),
			h,
		}
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/jobs", gated(AddJobSchema, jc.AddJob, model.RoleCompanyHR)...)
	r.PATCH("/jobs", gated(UpdateJobSchema, jc.UpdateJob, model.RoleCompanyHR)...)
	r.DELETE("/jobs", gated(DeleteJobSchema, jc.DeleteJob, model.RoleCompanyHR)...)
	r.GET("/jobs", gated(ListJobsSchema, jc.ListJobs, model.RoleCompanyHR, model.RoleUser)...)
	r.GET("/jobs/getJobs", gated(CompanyJobsSchema, jc.JobsForCompany, model.RoleCompanyHR, model.RoleUser)...)
	r.GET("/jobs/filteredJobs", gated(FilterSchema, jc.FilteredJobs, model.RoleCompanyHR, model.RoleUser)...)
	r.POST("/jobs/apply", gated(ApplySchema(1<<20), jc.Apply, model.RoleUser)...)
	return r
}

func localStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, u model.User) string {
	t.Helper()
	token, err := auth.GetAccessToken(t, testDB, testTokens, u.Email, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func jobBody() gin.H {
	return gin.H{
		"jobTitle":        "Site Reliability Engineer",
		"jobLocation":     "onsite",
		"workingTime":     "fullTime",
		"seniorityLevel":  "Team-Lead",
		"jobDescription":  "Keep the lights on.",
		"technicalSkills": []string{"kubernetes"},
		"softSkills":      []string{"calm"},
	}
}

func ids(raw interface{}) []string {
	out := []string{}
	for _, item := range raw.([]interface{}) {
		out = append(out, item.(map[string]interface{})["id"].(string))
	}
	return out
}

func TestAddJob(t *testing.T) {
	token := tokenFor(t, database.TestHR1)

	body := jobBody()
	body["companyId"] = database.TestCompany1.ID
	rec, resp := testutil.MakeJSONRequest(body, token, router(localStore(t)), "/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Job added successfully", resp["msg"])
	job := resp["job"].(map[string]interface{})
	assert.Equal(t, database.TestHR1.ID, job["addedBy"])
	assert.Equal(t, database.TestCompany1.ID, job["companyId"])

	rec, resp = testutil.MakeJSONRequest(jobBody(), token, router(localStore(t)), "/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, resp["job"].(map[string]interface{})["companyId"])
}

func TestAddJob_ForeignCompany(t *testing.T) {
	body := jobBody()
	body["companyId"] = database.TestCompany2.ID

	rec, resp := testutil.MakeJSONRequest(body, tokenFor(t, database.TestHR1), router(localStore(t)), "/jobs", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found or not authorized", resp["msg"])
}

func TestAddJob_Rejections(t *testing.T) {
	body := jobBody()
	body["jobLocation"] = "moon"
	body["technicalSkills"] = []string{}

	rec, resp := testutil.MakeJSONRequest(body, tokenFor(t, database.TestHR1), router(localStore(t)), "/jobs", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, testutil.Messages(resp), 2)

	rec, _ = testutil.MakeJSONRequest(jobBody(), tokenFor(t, database.TestUser1), router(localStore(t)), "/jobs", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAndDeleteJob_OwnerOnly(t *testing.T) {
	job := model.Job{
		JobTitle:       "QA Engineer",
		JobLocation:    model.LocationHybrid,
		WorkingTime:    model.WorkingPartTime,
		SeniorityLevel: "junior",
		AddedByID:      database.TestHR2.ID,
	}
	require.NoError(t, testDB.Create(&job).Error)
	r := router(localStore(t))

	rec, resp := testutil.MakeJSONRequest(gin.H{"id": job.ID, "jobTitle": "Hijacked"}, tokenFor(t, database.TestHR1), r, "/jobs", http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found or not authorized", resp["msg"])

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"id":              job.ID,
		"jobTitle":        "QA Lead",
		"technicalSkills": []string{"cypress", "go"},
		"companyId":       database.TestCompany2.ID,
	}, tokenFor(t, database.TestHR2), r, "/jobs", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := resp["job"].(map[string]interface{})
	assert.Equal(t, "QA Lead", updated["jobTitle"])
	assert.Equal(t, []interface{}{"cypress", "go"}, updated["technicalSkills"])
	assert.Equal(t, database.TestCompany2.ID, updated["companyId"])
	assert.Equal(t, database.TestHR2.ID, updated["addedBy"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"id": job.ID}, tokenFor(t, database.TestHR1), r, "/jobs", http.MethodDelete)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"id": job.ID}, tokenFor(t, database.TestHR2), r, "/jobs", http.MethodDelete)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, job.ID, resp["job"].(map[string]interface{})["id"])

	var count int64
	require.NoError(t, testDB.Model(&model.Job{}).Where("id = ?", job.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListJobs_CompanyInfo(t *testing.T) {
	orphan := model.Job{
		JobTitle:       "Statistician",
		JobLocation:    model.LocationRemotely,
		WorkingTime:    model.WorkingFullTime,
		SeniorityLevel: "senior",
		AddedByID:      database.TestHR2.ID,
	}
	require.NoError(t, testDB.Create(&orphan).Error)

	rec, resp := testutil.MakeJSONRequest(nil, tokenFor(t, database.TestUser1), router(localStore(t)), "/jobs", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	byID := map[string]map[string]interface{}{}
	for _, item := range resp["jobsWithCompanyInfo"].([]interface{}) {
		j := item.(map[string]interface{})
		byID[j["id"].(string)] = j
	}
	require.Contains(t, byID, database.TestJob1.ID)
	assert.Equal(t, "ACME Corp", byID[database.TestJob1.ID]["companyName"])
	assert.Equal(t, "Manufacturing", byID[database.TestJob1.ID]["industry"])
	require.Contains(t, byID, orphan.ID)
	assert.Equal(t, "Globex", byID[orphan.ID]["companyName"])
	assert.Equal(t, "jobs@globex.example.com", byID[orphan.ID]["companyEmail"])
	require.Contains(t, byID, database.TestJob4.ID)
	assert.Nil(t, byID[database.TestJob4.ID]["companyId"])
	assert.Equal(t, "ACME Corp", byID[database.TestJob4.ID]["companyName"])
}

func TestJobsForCompany_ExactName(t *testing.T) {
	r := router(localStore(t))
	token := tokenFor(t, database.TestUser1)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/jobs/getJobs?companyName=acme%20corp", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, database.TestCompany1.ID, resp["company"].(map[string]interface{})["id"])
	got := ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob1.ID)
	assert.Contains(t, got, database.TestJob2.ID)
	// posted by the owner without a company reference
	assert.Contains(t, got, database.TestJob4.ID)
	assert.NotContains(t, got, database.TestJob3.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/getJobs?companyName=GLOBEX", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob3.ID)
	assert.NotContains(t, got, database.TestJob4.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/getJobs?companyName=acme", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found", resp["msg"])
}

func TestFilteredJobs(t *testing.T) {
	r := router(localStore(t))
	token := tokenFor(t, database.TestUser2)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?workingTime=partTime&jobLocation=hybrid", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob2.ID)
	assert.Contains(t, got, database.TestJob3.ID)
	assert.NotContains(t, got, database.TestJob1.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?technicalSkills=python,react", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	got = ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob2.ID)
	assert.Contains(t, got, database.TestJob3.ID)
	assert.NotContains(t, got, database.TestJob1.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?jobTitle=backend", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{database.TestJob1.ID}, ids(resp["jobs"]))

	// jobTitle is a case-insensitive substring with wildcards taken literally
	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?jobTitle=END", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	got = ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob1.ID)
	assert.Contains(t, got, database.TestJob2.ID)
	assert.NotContains(t, got, database.TestJob4.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?jobTitle=%25", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp["jobs"])

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?technicalSkills=docker&technicalSkills=python", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	got = ids(resp["jobs"])
	assert.Contains(t, got, database.TestJob3.ID)
	assert.Contains(t, got, database.TestJob4.ID)
	assert.NotContains(t, got, database.TestJob1.ID)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var total int64
	require.NoError(t, testDB.Model(&model.Job{}).Count(&total).Error)
	assert.Len(t, resp["jobs"], int(total))

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/jobs/filteredJobs?workingTime=sometimes", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func applyFields(jobID string) map[string]string {
	return map[string]string{
		"id":             jobID,
		"userTechSkills": "go, sql",
		"userSoftSkills": "teamwork",
	}
}

func resume(content []byte) []testutil.FormFile {
	return []testutil.FormFile{{Field: ResumeField, Filename: "cv.pdf", Content: content}}
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, storage.ResumePrefix, "*"))
	require.NoError(t, err)
	return matches
}

func TestApply(t *testing.T) {
	store := localStore(t)
	r := router(store)
	token := tokenFor(t, database.TestUser1)

	rec, resp := testutil.MakeMultipartRequest(applyFields(database.TestJob1.ID), resume(testutil.PDFContent), token, r, "/jobs/apply", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Application sent successfully", resp["msg"])
	application := resp["application"].(map[string]interface{})
	assert.Equal(t, []interface{}{"go", "sql"}, application["userTechSkills"])
	assert.Equal(t, database.TestUser1.ID, application["userId"])

	files := storedFiles(t, store.Dir)
	require.Len(t, files, 1)
	assert.Equal(t, files[0], application["userResume"])
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, testutil.PDFContent, content)

	rec, resp = testutil.MakeMultipartRequest(applyFields(database.TestJob1.ID), resume(testutil.PDFContent), token, r, "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "You have already applied to this job", resp["msg"])
	assert.Len(t, storedFiles(t, store.Dir), 1)
}

func TestApply_RejectsNonPDF(t *testing.T) {
	store := localStore(t)

	rec, resp := testutil.MakeMultipartRequest(applyFields(database.TestJob3.ID), resume([]byte("plain text pretending")),
		tokenFor(t, database.TestUser2), router(store), "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", resp["msg"])
	assert.Empty(t, storedFiles(t, store.Dir))

	var count int64
	require.NoError(t, testDB.Model(&model.Application{}).
		Where("job_id = ? AND user_id = ?", database.TestJob3.ID, database.TestUser2.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestApply_Rejections(t *testing.T) {
	store := localStore(t)
	r := router(store)

	rec, resp := testutil.MakeMultipartRequest(applyFields(model.NewID()), resume(testutil.PDFContent),
		tokenFor(t, database.TestUser2), r, "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", resp["msg"])

	rec, _ = testutil.MakeMultipartRequest(applyFields(database.TestJob1.ID), resume(testutil.PDFContent),
		tokenFor(t, database.TestHR1), r, "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeMultipartRequest(applyFields(database.TestJob1.ID), nil,
		tokenFor(t, database.TestUser2), r, "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, testutil.Messages(resp), 1)

	assert.Empty(t, storedFiles(t, store.Dir))
}

// vanishingJobStorage deletes the job while its resume is being stored.
type vanishingJobStorage struct {
	*storage.LocalStorage
	jobID   string
	deleted []string
}

func (s *vanishingJobStorage) UploadFile(ctx context.Context, objectName string, data io.Reader) (string, error) {
	if err := testDB.Where("id = ?", s.jobID).Delete(&model.Job{}).Error; err != nil {
		return "", err
	}
	return s.LocalStorage.UploadFile(ctx, objectName, data)
}

func (s *vanishingJobStorage) DeleteFile(ctx context.Context, objectName string) error {
	s.deleted = append(s.deleted, objectName)
	return s.LocalStorage.DeleteFile(ctx, objectName)
}

func TestApply_RemovesResumeWhenRecordFails(t *testing.T) {
	job := model.Job{
		JobTitle:       "Short Lived",
		JobLocation:    model.LocationOnsite,
		WorkingTime:    model.WorkingFullTime,
		SeniorityLevel: "junior",
		AddedByID:      database.TestHR1.ID,
	}
	require.NoError(t, testDB.Create(&job).Error)
	store := &vanishingJobStorage{LocalStorage: localStore(t), jobID: job.ID}

	rec, resp := testutil.MakeMultipartRequest(applyFields(job.ID), resume(testutil.PDFContent),
		tokenFor(t, database.TestUser2), router(store), "/jobs/apply", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", resp["msg"])
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, storedFiles(t, store.Dir))
}
