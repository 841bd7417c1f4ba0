package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	m "jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported seeded fixtures
var (
	TestAdminUser m.User
	TestUser1     m.User
	TestUser2     m.User
	TestHR1       m.User
	TestHR2       m.User

	TestCompany1 m.Company
	TestCompany2 m.Company

	TestJob1 m.Job
	TestJob2 m.Job
	TestJob3 m.Job
	// TestJob4 is posted by TestHR1 without a company reference
	TestJob4 m.Job

	// TestSeedPassword is the plaintext password of every seeded identity
	TestSeedPassword = "SeedPass123!"
	// TestHashCost keeps seeding and sign-up fast in tests
	TestHashCost = bcrypt.MinCost
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts identities, companies and jobs when the database is empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return loadTestData(db)
	}

	hashedPwd, err := utilities.HashPassword(TestSeedPassword, TestHashCost)
	if err != nil {
		return err
	}

	users := []m.User{
		{FirstName: "Alice", LastName: "Nguyen", Email: "user1@example.com", RecoveryEmail: "recovery1@example.com", MobileNumber: "0100000001", DOB: "1998-04-12", Role: m.RoleUser},
		{FirstName: "Bobby", LastName: "Somsak", Email: "user2@example.com", RecoveryEmail: "recovery2@example.com", MobileNumber: "0100000002", DOB: "1997-01-30", Role: m.RoleUser},
		{FirstName: "Carol", LastName: "Hunter", Email: "hr1@example.com", RecoveryEmail: "hr-recovery@example.com", MobileNumber: "0200000001", DOB: "1988-09-01", Role: m.RoleCompanyHR},
		{FirstName: "David", LastName: "Keller", Email: "hr2@example.com", RecoveryEmail: "hr-recovery@example.com", MobileNumber: "0200000002", DOB: "1990-11-15", Role: m.RoleCompanyHR},
		{FirstName: "admin", LastName: "admin", Email: "admin@example.com", RecoveryEmail: "admin@example.com", MobileNumber: "0300000001", DOB: "1970-01-01", Role: m.RoleAdmin},
	}
	for i := range users {
		users[i].Password = hashedPwd
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	companies := []m.Company{
		{
			CompanyName:       "ACME Corp",
			Description:       "Anvils and rockets",
			Industry:          "Manufacturing",
			Address:           "1 Desert Road",
			NumberOfEmployees: "51-100",
			CompanyEmail:      "contact@acme.example.com",
			CompanyHRID:       TestHR1.ID,
		},
		{
			CompanyName:       "Globex",
			Description:       "Data analytics consulting",
			Industry:          "Consulting",
			Address:           "42 Cypress Creek",
			NumberOfEmployees: "201-500",
			CompanyEmail:      "jobs@globex.example.com",
			CompanyHRID:       TestHR2.ID,
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}
	TestCompany1 = companies[0]
	TestCompany2 = companies[1]

	jobs := []m.Job{
		{
			JobTitle:        "Backend Engineer",
			JobLocation:     m.LocationOnsite,
			WorkingTime:     m.WorkingFullTime,
			SeniorityLevel:  "junior",
			JobDescription:  "Work on Go services and database layers.",
			TechnicalSkills: pq.StringArray{"go", "sql"},
			SoftSkills:      pq.StringArray{"teamwork"},
			AddedByID:       TestHR1.ID,
			CompanyID:       &TestCompany1.ID,
		},
		{
			JobTitle:        "Frontend Developer",
			JobLocation:     m.LocationRemotely,
			WorkingTime:     m.WorkingPartTime,
			SeniorityLevel:  "Mid-Level",
			JobDescription:  "Build the component library.",
			TechnicalSkills: pq.StringArray{"react", "typescript"},
			SoftSkills:      pq.StringArray{"communication"},
			AddedByID:       TestHR1.ID,
			CompanyID:       &TestCompany1.ID,
		},
		{
			JobTitle:        "Data Analyst",
			JobLocation:     m.LocationHybrid,
			WorkingTime:     m.WorkingFullTime,
			SeniorityLevel:  "senior",
			JobDescription:  "Dashboards and data cleansing.",
			TechnicalSkills: pq.StringArray{"sql", "python"},
			SoftSkills:      pq.StringArray{"curiosity"},
			AddedByID:       TestHR2.ID,
			CompanyID:       &TestCompany2.ID,
		},
		{
			JobTitle:        "DevOps Intern",
			JobLocation:     m.LocationRemotely,
			WorkingTime:     m.WorkingPartTime,
			SeniorityLevel:  "junior",
			JobDescription:  "Keep the pipelines green.",
			TechnicalSkills: pq.StringArray{"docker"},
			SoftSkills:      pq.StringArray{"patience"},
			AddedByID:       TestHR1.ID,
		},
	}
	if err := db.Create(&jobs).Error; err != nil {
		return err
	}
	TestJob1, TestJob2, TestJob3, TestJob4 = jobs[0], jobs[1], jobs[2], jobs[3]

	return nil
}

func assignUsers(users []m.User) {
	for _, u := range users {
		switch u.Email {
		case "user1@example.com":
			TestUser1 = u
		case "user2@example.com":
			TestUser2 = u
		case "hr1@example.com":
			TestHR1 = u
		case "hr2@example.com":
			TestHR2 = u
		case "admin@example.com":
			TestAdminUser = u
		}
	}
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("email IN ?", []string{
		"user1@example.com", "user2@example.com", "hr1@example.com", "hr2@example.com", "admin@example.com",
	}).Find(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	if err := db.First(&TestCompany1, "company_hr_id = ?", TestHR1.ID).Error; err != nil {
		return err
	}
	if err := db.First(&TestCompany2, "company_hr_id = ?", TestHR2.ID).Error; err != nil {
		return err
	}

	for title, job := range map[string]*m.Job{
		"Backend Engineer":   &TestJob1,
		"Frontend Developer": &TestJob2,
		"Data Analyst":       &TestJob3,
		"DevOps Intern":      &TestJob4,
	} {
		if err := db.First(job, "job_title = ?", title).Error; err != nil {
			return err
		}
	}
	return nil
}
