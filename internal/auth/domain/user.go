package domain

import "time"

// Role is the small fixed set of account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assigned at registration.
const DefaultRole = RoleStudent

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// FailedLogin is the lockout counter embedded in the user record so it stays
// transactionally consistent with the account being locked.
type FailedLogin struct {
	Times             int
	LastFailedAttempt time.Time
}

// NamedRef points at an institutional entity (college, department, programme).
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AcademicDetails is the academic-affiliation sub-object of a user.
type AcademicDetails struct {
	College       NamedRef `json:"college"`
	Department    NamedRef `json:"department"`
	DegreeProgram NamedRef `json:"degreeProgram"`
	BatchYear     int      `json:"batchYear"`
	Designation   string   `json:"designation"`
}

// Connection references the opposing user of a social connection.
type Connection struct {
	UserID string `json:"userId"`
}

// User is the identity and account-state aggregate. Username, email, and
// campus id are each globally unique; the password is only ever stored as an
// Argon2id hash.
type User struct {
	ID              string
	CampusID        int64 // institutional id issued by the university
	Username        string
	Email           string // institutional email, constrained to the campus domain
	PasswordHash    string
	IsEmailVerified bool

	FirstName      string
	LastName       string
	ProfilePicture string
	Bio            string

	Academic AcademicDetails
	Role     Role

	FailedLogin *FailedLogin

	IsDeleted          bool // soft delete; rows are never physically removed by this core
	IsPermanentBlocked bool
	IsTemporaryBlocked bool
	LastActive         time.Time

	SentConnections     []Connection
	ReceivedConnections []Connection
	ConnectionList      []Connection

	ShowOnboarding bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch lists the fields this core is allowed to mutate after creation.
// Uniqueness-bearing fields (username, email, campus id) are deliberately
// absent so the storage-layer invariants cannot be bypassed by a patch.
type UserPatch struct {
	IsEmailVerified  *bool
	FailedLogin      *FailedLogin
	ClearFailedLogin bool
	LastActive       *time.Time
	IsDeleted        *bool
	ShowOnboarding   *bool
}

// DeletionGraceDays is the soft-delete grace window communicated to users.
const DeletionGraceDays = 30

// DeletionDeadline is the end of the grace window for a soft-deleted user.
func (u *User) DeletionDeadline() time.Time {
	return u.LastActive.AddDate(0, 0, DeletionGraceDays)
}
