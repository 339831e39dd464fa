package errors

import "errors"

// ErrStateConflict 状态条件更新冲突：当前状态已被其他操作推进
// 由 Repository 层的条件 UPDATE（RowsAffected == 0）上报，
// Service 层据此翻译为各自的业务错误（如非法状态流转）。
var ErrStateConflict = errors.New("记录状态已被其他操作修改")

// ErrDuplicateKey 唯一约束冲突：并发写入同一 (键) 组合时由数据库兜底
var ErrDuplicateKey = errors.New("记录已存在")

// ErrCapacityReached 容量约束冲突：带行锁的事务内计数检查未通过
var ErrCapacityReached = errors.New("容量已满")

