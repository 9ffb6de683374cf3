package model

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleEmployee UserRole = "employee" // 普通员工
	UserRoleAdmin    UserRole = "admin"    // 考勤管理员
)

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // 在职
	UserStatusInactive UserStatus = "inactive" // 离职/停用
)

// User 员工模型（档案主数据由 HR 系统维护，这里只保留考勤需要的字段）
type User struct {
	BaseModel
	PublicID   int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	EmployeeNo string     `gorm:"uniqueIndex;type:varchar(32);not null" json:"employee_no"`
	Name       string     `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Phone      string     `gorm:"type:varchar(20);not null;default:''" json:"-"` // 仅用于考勤提醒短信
	Role       UserRole   `gorm:"type:varchar(16);not null;default:'employee'" json:"role"`
	Status     UserStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_users_status" json:"status"`

	// 排班引用，班次主数据只读
	ShiftID int64 `gorm:"not null;index" json:"shift_id"`

	// 班前提醒设置
	ClockInReminderEnabled bool `gorm:"not null;default:false" json:"clock_in_reminder_enabled"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为考勤管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
