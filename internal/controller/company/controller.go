// Package company provides HTTP handlers for company related operations.
// Every mutation is scoped to the requesting HR identity.
package company

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

// CompanyController handles company endpoints
type CompanyController struct {
	DB *database.DBinstanceStruct
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(db *database.DBinstanceStruct) *CompanyController {
	return &CompanyController{
		DB: db,
	}
}

type companyResponse struct {
	Msg     string        `json:"msg"`
	Company model.Company `json:"company"`
}

type companyJobsResponse struct {
	Msg     string        `json:"msg"`
	Company model.Company `json:"company"`
	Jobs    []model.Job   `json:"jobs"`
}

type companiesResponse struct {
	Msg       string          `json:"msg"`
	Companies []model.Company `json:"companies"`
}

// applicationView exposes only the applicant's public profile.
type applicationView struct {
	model.Application
	User model.PublicProfile `json:"user"`
}

type applicationsResponse struct {
	Msg          string            `json:"msg"`
	Company      model.Company     `json:"company"`
	Jobs         []model.Job       `json:"jobs"`
	Applications []applicationView `json:"applications"`
}

func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return false
	}
	return true
}

// AddCompany creates a company owned by the requester.
// @Summary Add a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body AddCompanyRequest true "Company information"
// @Success 201 {object} companyResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request"
// @Failure 403 {object} utilities.ErrorResponse "not authorized"
// @Failure 409 {object} utilities.ErrorResponse "Company already exists"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies/addCompany [post]
func (cc *CompanyController) AddCompany(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info AddCompanyRequest
	if !bind(c, &info) {
		return
	}

	company := model.Company{
		CompanyName:       info.CompanyName,
		Description:       info.Description,
		Industry:          info.Industry,
		Address:           info.Address,
		NumberOfEmployees: model.EmployeeRange(info.NumberOfEmployees),
		CompanyEmail:      info.CompanyEmail,
		CompanyHRID:       user.ID,
	}
	if err := cc.DB.WithContext(c.Request.Context()).Create(&company).Error; err != nil {
		if utilities.IsUniqueViolation(err) {
			utilities.Fail(c, utilities.NewConflict("Company already exists"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusCreated, companyResponse{Msg: "Company added successfully", Company: company})
}

// UpdateCompany edits a company the requester owns. Id and owner are matched
// in the same statement that writes, so a foreign company looks missing.
// @Summary Update own company
// @Tags Companies
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body UpdateCompanyRequest true "Company id and fields to change"
// @Success 200 {object} companyResponse
// @Failure 404 {object} utilities.ErrorResponse "Company not found or not authorized"
// @Failure 409 {object} utilities.ErrorResponse "Company email already in use"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies [patch]
func (cc *CompanyController) UpdateCompany(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info UpdateCompanyRequest
	if !bind(c, &info) {
		return
	}

	updates := map[string]any{"updated_at": time.Now()}
	for column, value := range map[string]string{
		"company_name":        info.CompanyName,
		"description":         info.Description,
		"industry":            info.Industry,
		"address":             info.Address,
		"number_of_employees": info.NumberOfEmployees,
		"company_email":       info.CompanyEmail,
	} {
		if value != "" {
			updates[column] = value
		}
	}

	var company model.Company
	res := cc.DB.WithContext(c.Request.Context()).
		Model(&company).
		Clauses(clause.Returning{}).
		Where("id = ? AND company_hr_id = ?", info.ID, user.ID).
		Updates(updates)
	if res.Error != nil {
		if utilities.IsUniqueViolation(res.Error) {
			utilities.Fail(c, utilities.NewConflict("Company email already in use"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Company"))
		return
	}

	c.JSON(http.StatusOK, companyResponse{Msg: "done", Company: company})
}

// DeleteCompany deletes a company the requester owns. Jobs pointing at it
// lose their company reference.
// @Summary Delete own company
// @Tags Companies
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body DeleteCompanyRequest true "Company id"
// @Success 200 {object} companyResponse
// @Failure 404 {object} utilities.ErrorResponse "Company not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies [delete]
func (cc *CompanyController) DeleteCompany(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info DeleteCompanyRequest
	if !bind(c, &info) {
		return
	}

	var company model.Company
	res := cc.DB.WithContext(c.Request.Context()).
		Clauses(clause.Returning{}).
		Where("id = ? AND company_hr_id = ?", info.ID, user.ID).
		Delete(&company)
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Company"))
		return
	}

	c.JSON(http.StatusOK, companyResponse{Msg: "done", Company: company})
}

// GetCompany returns a company with its jobs, counting the owner's jobs that
// carry no company reference.
// @Summary Get company with its jobs
// @Tags Companies
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param id path string true "Company id"
// @Success 200 {object} companyJobsResponse
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies/{id} [get]
func (cc *CompanyController) GetCompany(c *gin.Context) {
	db := cc.DB.WithContext(c.Request.Context())

	var company model.Company
	if err := db.Where("id = ?", c.Param("id")).First(&company).Error; err != nil {
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

// SearchCompanies matches companyName as a case-insensitive substring.
// @Summary Search companies by name
// @Tags Companies
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param companyName query string true "Part of the company name"
// @Success 200 {object} companiesResponse
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies [get]
func (cc *CompanyController) SearchCompanies(c *gin.Context) {
	companies := []model.Company{}
	if err := cc.DB.WithContext(c.Request.Context()).
		Where("company_name ILIKE ?", utilities.ContainsPattern(c.Query("companyName"))).
		Order("company_name").
		Find(&companies).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, companiesResponse{Msg: "done", Companies: companies})
}

// GetApplications lists applications to the jobs of a company the requester
// owns, with applicant details. Jobs without a company reference count when
// posted by the owner.
// @Summary List applications to a company's jobs
// @Tags Companies
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param id path string true "Company id"
// @Success 200 {object} applicationsResponse
// @Failure 404 {object} utilities.ErrorResponse "Company not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /companies/getApplications/{id} [get]
func (cc *CompanyController) GetApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}
	db := cc.DB.WithContext(c.Request.Context())

	var company model.Company
	if err := db.Where("id = ? AND company_hr_id = ?", c.Param("id"), user.ID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("Company"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	jobs := []model.Job{}
	if err := db.
		Scopes(model.JobsOf(company)).
		Order("created_at").
		Find(&jobs).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	views := []applicationView{}
	if len(jobs) > 0 {
		jobIDs := make([]string, 0, len(jobs))
		for _, j := range jobs {
			jobIDs = append(jobIDs, j.ID)
		}
		var applications []model.Application
		if err := db.Preload("User").
			Where("job_id IN ?", jobIDs).
			Order("created_at").
			Find(&applications).Error; err != nil {
			utilities.Fail(c, utilities.NewInternal(err))
			return
		}
		for _, a := range applications {
			v := applicationView{Application: a}
			if a.User != nil {
				v.User = a.User.Profile()
			}
			views = append(views, v)
		}
	}

	c.JSON(http.StatusOK, applicationsResponse{
		Msg:          "done",
		Company:      company,
		Jobs:         jobs,
		Applications: views,
	})
}
