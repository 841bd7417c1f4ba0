package company

import "jobboard-backend/internal/validation"

// AddCompanyRequest creates a company owned by the requester.
type AddCompanyRequest struct {
	CompanyName       string `json:"companyName" binding:"required,max=100"`
	Description       string `json:"description" binding:"required"`
	Industry          string `json:"industry" binding:"required"`
	Address           string `json:"address" binding:"required"`
	NumberOfEmployees string `json:"numberOfEmployees" binding:"required,oneof=1-10 11-20 21-50 51-100 101-200 201-500 501-1000 1000+"`
	CompanyEmail      string `json:"companyEmail" binding:"required,email"`
}

// UpdateCompanyRequest edits a company. Empty fields are left unchanged.
type UpdateCompanyRequest struct {
	ID                string `json:"id" binding:"required,objectid"`
	CompanyName       string `json:"companyName" binding:"omitempty,max=100"`
	Description       string `json:"description"`
	Industry          string `json:"industry"`
	Address           string `json:"address"`
	NumberOfEmployees string `json:"numberOfEmployees" binding:"omitempty,oneof=1-10 11-20 21-50 51-100 101-200 201-500 501-1000 1000+"`
	CompanyEmail      string `json:"companyEmail" binding:"omitempty,email"`
}

// DeleteCompanyRequest names the company to delete.
type DeleteCompanyRequest struct {
	ID string `json:"id" binding:"required,objectid"`
}

// CompanyIDParams is the path of the per-company routes.
type CompanyIDParams struct {
	ID string `uri:"id" binding:"required,objectid"`
}

// SearchQuery is the query of GET /companies.
type SearchQuery struct {
	CompanyName string `form:"companyName" binding:"required"`
}

// Route schemas
var (
	AddCompanySchema      = validation.Schema{Body: AddCompanyRequest{}}
	UpdateCompanySchema   = validation.Schema{Body: UpdateCompanyRequest{}}
	DeleteCompanySchema   = validation.Schema{Body: DeleteCompanyRequest{}}
	GetCompanySchema      = validation.Schema{Params: CompanyIDParams{}}
	SearchSchema          = validation.Schema{Query: SearchQuery{}}
	GetApplicationsSchema = validation.Schema{Params: CompanyIDParams{}}
)
