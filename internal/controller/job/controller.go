// Package job provides HTTP handlers for jobs and applications.
package job

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/storage"
	"jobboard-backend/internal/utilities"
)

// JobController handles job and application endpoints
type JobController struct {
	DB      *database.DBinstanceStruct
	Storage storage.StorageClient
}

// NewJobController creates a new instance of JobController
func NewJobController(db *database.DBinstanceStruct, store storage.StorageClient) *JobController {
	return &JobController{
		DB:      db,
		Storage: store,
	}
}

type jobResponse struct {
	Msg string    `json:"msg"`
	Job model.Job `json:"job"`
}

type jobsResponse struct {
	Msg  string      `json:"msg"`
	Jobs []model.Job `json:"jobs"`
}

type companyJobsResponse struct {
	Msg     string        `json:"msg"`
	Company model.Company `json:"company"`
	Jobs    []model.Job   `json:"jobs"`
}

// JobWithCompany is a job enriched with its company's details.
type JobWithCompany struct {
	model.Job
	CompanyName  string `json:"companyName,omitempty"`
	CompanyEmail string `json:"companyEmail,omitempty"`
	Industry     string `json:"industry,omitempty"`
}

type jobsWithCompanyResponse struct {
	Msg                 string           `json:"msg"`
	JobsWithCompanyInfo []JobWithCompany `json:"jobsWithCompanyInfo"`
}

func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return false
	}
	return true
}

// ownsCompany reports whether companyID belongs to owner. A foreign company
// is reported exactly like a missing one.
func (jc *JobController) ownsCompany(c *gin.Context, companyID, owner string) bool {
	var count int64
	err := jc.DB.WithContext(c.Request.Context()).
		Model(&model.Company{}).
		Where("id = ? AND company_hr_id = ?", companyID, owner).
		Count(&count).Error
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return false
	}
	if count == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Company"))
		return false
	}
	return true
}

// AddJob posts a job owned by the requester.
// @Summary Post a job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Job body AddJobRequest true "Job information"
// @Success 201 {object} jobResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request"
// @Failure 403 {object} utilities.ErrorResponse "not authorized"
// @Failure 404 {object} utilities.ErrorResponse "Company not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs [post]
func (jc *JobController) AddJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info AddJobRequest
	if !bind(c, &info) {
		return
	}

	job := model.Job{
		JobTitle:        info.JobTitle,
		JobLocation:     info.JobLocation,
		WorkingTime:     info.WorkingTime,
		SeniorityLevel:  info.SeniorityLevel,
		JobDescription:  info.JobDescription,
		TechnicalSkills: info.TechnicalSkills,
		SoftSkills:      info.SoftSkills,
		AddedByID:       user.ID,
	}
	if info.CompanyID != "" {
		if !jc.ownsCompany(c, info.CompanyID, user.ID) {
			return
		}
		job.CompanyID = &info.CompanyID
	}

	if err := jc.DB.WithContext(c.Request.Context()).Create(&job).Error; err != nil {
		if utilities.IsForeignKeyViolation(err) {
			utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Company"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusCreated, jobResponse{Msg: "Job added successfully", Job: job})
}

// UpdateJob edits a job the requester posted.
// @Summary Update own job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Job body UpdateJobRequest true "Job id and fields to change"
// @Success 200 {object} jobResponse
// @Failure 404 {object} utilities.ErrorResponse "Job not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs [patch]
func (jc *JobController) UpdateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info UpdateJobRequest
	if !bind(c, &info) {
		return
	}

	updates := map[string]any{"updated_at": time.Now()}
	for column, value := range map[string]string{
		"job_title":       info.JobTitle,
		"job_location":    info.JobLocation,
		"working_time":    info.WorkingTime,
		"seniority_level": info.SeniorityLevel,
		"job_description": info.JobDescription,
	} {
		if value != "" {
			updates[column] = value
		}
	}
	if len(info.TechnicalSkills) > 0 {
		updates["technical_skills"] = pq.StringArray(info.TechnicalSkills)
	}
	if len(info.SoftSkills) > 0 {
		updates["soft_skills"] = pq.StringArray(info.SoftSkills)
	}
	if info.CompanyID != "" {
		if !jc.ownsCompany(c, info.CompanyID, user.ID) {
			return
		}
		updates["company_id"] = info.CompanyID
	}

	var job model.Job
	res := jc.DB.WithContext(c.Request.Context()).
		Model(&job).
		Clauses(clause.Returning{}).
		Where("id = ? AND added_by_id = ?", info.ID, user.ID).
		Updates(updates)
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Job"))
		return
	}

	c.JSON(http.StatusOK, jobResponse{Msg: "done", Job: job})
}

// DeleteJob deletes a job the requester posted together with its applications.
// @Summary Delete own job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Job body DeleteJobRequest true "Job id"
// @Success 200 {object} jobResponse
// @Failure 404 {object} utilities.ErrorResponse "Job not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs [delete]
func (jc *JobController) DeleteJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info DeleteJobRequest
	if !bind(c, &info) {
		return
	}

	var job model.Job
	res := jc.DB.WithContext(c.Request.Context()).
		Clauses(clause.Returning{}).
		Where("id = ? AND added_by_id = ?", info.ID, user.ID).
		Delete(&job)
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Job"))
		return
	}

	c.JSON(http.StatusOK, jobResponse{Msg: "done", Job: job})
}

// ListJobs returns every job with its company's name, email and industry.
// Jobs without a company reference use the poster's first company.
// @Summary List jobs with company information
// @Tags Jobs
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Success 200 {object} jobsWithCompanyResponse
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs [get]
func (jc *JobController) ListJobs(c *gin.Context) {
	db := jc.DB.WithContext(c.Request.Context())

	var jobs []model.Job
	if err := db.Order("created_at").Find(&jobs).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	var companies []model.Company
	if err := db.Order("created_at").Find(&companies).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}
	byID := make(map[string]model.Company, len(companies))
	firstByOwner := make(map[string]model.Company)
	for _, co := range companies {
		byID[co.ID] = co
		if _, ok := firstByOwner[co.CompanyHRID]; !ok {
			firstByOwner[co.CompanyHRID] = co
		}
	}

	out := make([]JobWithCompany, 0, len(jobs))
	for _, j := range jobs {
		var (
			co model.Company
			ok bool
		)
		if j.CompanyID != nil {
			co, ok = byID[*j.CompanyID]
		} else {
			co, ok = firstByOwner[j.AddedByID]
		}
		item := JobWithCompany{Job: j}
		if ok {
			item.CompanyName = co.CompanyName
			item.CompanyEmail = co.CompanyEmail
			item.Industry = co.Industry
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, jobsWithCompanyResponse{Msg: "done", JobsWithCompanyInfo: out})
}

// JobsForCompany returns the jobs of the company whose name matches exactly,
// ignoring case.
// @Summary List a company's jobs
// @Tags Jobs
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param companyName query string true "Company name"
// @Success 200 {object} companyJobsResponse
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs/getJobs [get]
func (jc *JobController) JobsForCompany(c *gin.Context) {
	db := jc.DB.WithContext(c.Request.Context())

	var company model.Company
	err := db.Where("company_name ILIKE ?", utilities.ExactPattern(c.Query("companyName"))).
		Order("created_at").
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utilities.Fail(c, utilities.NewNotFound("Company not found"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	jobs := []model.Job{}
	if err := db.Scopes(model.JobsOf(company)).Order("created_at").Find(&jobs).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, companyJobsResponse{Msg: "done", Company: company, Jobs: jobs})
}

// FilteredJobs returns jobs matching any supplied criterion. Omitted criteria
// take no part, and with none at all every job matches.
// @Summary Filter jobs
// @Tags Jobs
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param workingTime query string false "fullTime or partTime"
// @Param jobLocation query string false "onsite, remotely or hybrid"
// @Param seniorityLevel query string false "Seniority"
// @Param jobTitle query string false "Part of the job title"
// @Param technicalSkills query string false "Comma separated skills"
// @Success 200 {object} jobsResponse
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs/filteredJobs [get]
func (jc *JobController) FilteredJobs(c *gin.Context) {
	var q FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return
	}

	var (
		conds []string
		args  []any
	)
	if q.WorkingTime != "" {
		conds = append(conds, "working_time = ?")
		args = append(args, q.WorkingTime)
	}
	if q.JobLocation != "" {
		conds = append(conds, "job_location = ?")
		args = append(args, q.JobLocation)
	}
	if q.SeniorityLevel != "" {
		conds = append(conds, "seniority_level = ?")
		args = append(args, q.SeniorityLevel)
	}
	if q.JobTitle != "" {
		conds = append(conds, "job_title ILIKE ?")
		args = append(args, utilities.ContainsPattern(q.JobTitle))
	}
	if skills := utilities.SplitList(q.TechnicalSkills...); len(skills) > 0 {
		conds = append(conds, "technical_skills && ?")
		args = append(args, pq.StringArray(skills))
	}

	query := jc.DB.WithContext(c.Request.Context()).Model(&model.Job{})
	if len(conds) > 0 {
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	jobs := []model.Job{}
	if err := query.Order("created_at").Find(&jobs).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, jobsResponse{Msg: "done", Jobs: jobs})
}
