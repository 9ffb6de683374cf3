package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"KaoQin/internal/model"
	"KaoQin/storage/database"
)

// ========== User 相关查询接口 ==========

// UserQuerier 员工查询接口
type UserQuerier interface {
	// GetByPublicID 根据 PublicID 查询员工（API 中 userID 是 public_id）
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetByEmployeeNo 根据工号查询员工
	//
	// SELECT * FROM @@table WHERE employee_no = @employeeNo LIMIT 1
	GetByEmployeeNo(employeeNo string) (*gen.T, error)

	// ListActiveByShift 查询某班次下启用提醒的在职员工（用于定时任务）
	//
	// SELECT * FROM @@table
	// WHERE shift_id = @shiftID
	//   AND status = 'active'
	//   AND clock_in_reminder_enabled = true
	ListActiveByShift(shiftID int64) ([]*gen.T, error)

	// CountByStatus 统计各状态的员工数量
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// GROUP BY status
	CountByStatus() ([]gen.M, error)
}

// ========== AttendanceDay 相关查询接口 ==========

// AttendanceDayQuerier 考勤日查询接口
type AttendanceDayQuerier interface {
	// GetByUserIDAndDate 根据用户和日期查询考勤日
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID AND date = @date::date
	// LIMIT 1
	GetByUserIDAndDate(userID int64, date string) (*gen.T, error)

	// ListByUserIDAndDateRange 按用户和日期范围查询考勤日（分页）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND date >= @fromDate::date
	//   AND date <= @toDate::date
	//   {{if status != ""}}
	//   AND status = @status
	//   {{end}}
	// ORDER BY date DESC
	// LIMIT @limit OFFSET @offset
	ListByUserIDAndDateRange(userID int64, fromDate, toDate string, status string, limit, offset int) ([]*gen.T, error)

	// ListForgottenByDate 查询某天仍有未闭合工作段的考勤日（用于修复任务）
	//
	// SELECT DISTINCT ad.* FROM @@table ad
	// INNER JOIN work_segments ws ON ws.attendance_day_id = ad.id
	// WHERE ad.date = @date::date
	//   AND ws.clock_out IS NULL
	//   AND ws.deleted_at IS NULL
	ListForgottenByDate(date string) ([]*gen.T, error)

	// CountByUserIDAndStatus 统计用户考勤天数（按状态）
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// WHERE user_id = @userID
	//   AND date >= @fromDate::date
	//   AND date <= @toDate::date
	// GROUP BY status
	CountByUserIDAndStatus(userID int64, fromDate, toDate string) ([]gen.M, error)
}

// ========== CorrectionRequest 相关查询接口 ==========

// CorrectionQuerier 补卡申请查询接口
type CorrectionQuerier interface {
	// GetByPublicID 根据对外 ID 查询补卡申请
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// CountPending 统计某用户在某日期某类型下的待审批申请（重复提交检查）
	//
	// SELECT COUNT(*) as count
	// FROM @@table
	// WHERE user_id = @userID
	//   AND date = @date::date
	//   AND type = @requestType
	//   AND status = 'pending'
	CountPending(userID int64, date string, requestType string) (int64, error)

	// ListByStatus 按状态查询补卡申请（管理端审批列表）
	//
	// SELECT * FROM @@table
	// WHERE status = @status
	//   {{if userID > 0}}
	//   AND user_id = @userID
	//   {{end}}
	// ORDER BY created_at DESC
	// LIMIT @limit OFFSET @offset
	ListByStatus(status string, userID int64, limit, offset int) ([]*gen.T, error)
}

// ========== LeaveRequest 相关查询接口 ==========

// LeaveQuerier 请假记录查询接口
type LeaveQuerier interface {
	// ListApprovedByUserIDAndDateRange 查询区间内已批准的请假记录（月度汇总用）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND date >= @fromDate::date
	//   AND date < @toDate::date
	//   AND status = 'approved'
	ListApprovedByUserIDAndDateRange(userID int64, fromDate, toDate string) ([]*gen.T, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "KaoQin/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.User{},
		&model.Shift{},
		&model.AttendanceDay{},
		&model.WorkSegment{},
		&model.BreakSegment{},
		&model.AttendanceCorrectionRequest{},
		&model.LeaveRequest{},
		&model.WorkFromHomeRequest{},
		&model.Holiday{},
	)

	// 直接应用接口，GORM Gen 会根据接口中的类型自动匹配已注册的 model
	g.ApplyInterface(func(UserQuerier) {}, &model.User{})
	g.ApplyInterface(func(AttendanceDayQuerier) {}, &model.AttendanceDay{})
	g.ApplyInterface(func(CorrectionQuerier) {}, &model.AttendanceCorrectionRequest{})
	g.ApplyInterface(func(LeaveQuerier) {}, &model.LeaveRequest{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
