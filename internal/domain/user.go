package domain

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type User struct {
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserActive
}

func (r Role) Label() string {
	if r == RoleAdmin {
		return "ผู้ดูแลระบบ"
	}
	return "ครู"
}

func (s UserStatus) Label() string {
	switch s {
	case UserPending:
		return "รออนุมัติ"
	case UserActive:
		return "ใช้งาน"
	case UserInactive:
		return "ระงับการใช้งาน"
	}
	return string(s)
}

// Toggled flips admin <-> teacher.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleTeacher
	}
	return RoleAdmin
}

// Toggled returns the status an admin toggle moves to. Pending accounts are
// approved into active.
func (s UserStatus) Toggled() UserStatus {
	if s == UserActive {
		return UserInactive
	}
	return UserActive
}

// PartitionUsers splits accounts into those awaiting approval and everyone else,
// keeping the input order in both.
func PartitionUsers(users []*User) (pending []*User, others []*User) {
	pending = []*User{}
	others = []*User{}
	for _, u := range users {
		if u.Status == UserPending {
			pending = append(pending, u)
		} else {
			others = append(others, u)
		}
	}
	return pending, others
}
