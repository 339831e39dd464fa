package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/model"
	"github.com/orafaelmatos/learn-hub/internal/repository"
	pkgerrors "github.com/orafaelmatos/learn-hub/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !strings.Contains(u.Name, keyword) && !strings.Contains(u.Email, keyword) {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListTeachers(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleTeacher && u.IsActive {
			result = append(result, *u)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock CategoryRepository ──

type mockCategoryRepo struct {
	categories map[string]*model.Category
	seq        int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if category.CategoryID == "" {
		m.seq++
		category.CategoryID = fmt.Sprintf("cat-%03d", m.seq)
	}
	m.categories[category.CategoryID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var result []model.Category
	for _, c := range m.categories {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	for _, c := range m.categories {
		if c.CategoryID != category.CategoryID && c.Name == category.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.categories[category.CategoryID] = category
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	delete(m.categories, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%03d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) List(_ context.Context, status, categoryID, difficulty, keyword string, _, _ int) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.DeletedAt.Valid {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if categoryID != "" && c.CategoryID != categoryID {
			continue
		}
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}
		if keyword != "" && !strings.Contains(c.Title, keyword) {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockCourseRepo) ListByTeacher(_ context.Context, teacherID string, _, _ int) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.courses {
		if !c.DeletedAt.Valid && c.TeacherID == teacherID {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockCourseRepo) TransitionStatus(_ context.Context, id, from, to string, _ string) error {
	c, ok := m.courses[id]
	if !ok || c.Status != from {
		return pkgerrors.ErrStateConflict
	}
	c.Status = to
	if to == model.CourseStatusPublished {
		now := time.Now()
		c.PublishedAt = &now
	}
	return nil
}

// ── Mock EnrollmentRepository ──
// 与 mockCourseRepo 共享课程表，以复现容量检查和计数器同步的事务语义

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment // key: studentID|courseID
	courses     *mockCourseRepo
	seq         int
}

func newMockEnrollmentRepo(courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		courses:     courses,
	}
}

func enrollKey(studentID, courseID string) string {
	return studentID + "|" + courseID
}

func (m *mockEnrollmentRepo) Enroll(_ context.Context, enrollment *model.Enrollment) error {
	course, ok := m.courses.courses[enrollment.CourseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if course.IsFull() {
		return pkgerrors.ErrCapacityReached
	}
	key := enrollKey(enrollment.StudentID, enrollment.CourseID)
	if _, exists := m.enrollments[key]; exists {
		return pkgerrors.ErrDuplicateKey
	}
	if enrollment.EnrollmentID == "" {
		m.seq++
		enrollment.EnrollmentID = fmt.Sprintf("enr-%03d", m.seq)
	}
	m.enrollments[key] = enrollment
	course.EnrolledCount++
	return nil
}

func (m *mockEnrollmentRepo) Unenroll(_ context.Context, studentID, courseID string) error {
	key := enrollKey(studentID, courseID)
	if _, exists := m.enrollments[key]; !exists {
		return gorm.ErrRecordNotFound
	}
	delete(m.enrollments, key)
	if course, ok := m.courses.courses[courseID]; ok && course.EnrolledCount > 0 {
		course.EnrolledCount--
	}
	return nil
}

func (m *mockEnrollmentRepo) Get(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[enrollKey(studentID, courseID)]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, studentID, courseID string) (bool, error) {
	_, ok := m.enrollments[enrollKey(studentID, courseID)]
	return ok, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string, _, _ int) ([]model.Enrollment, int64, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, *e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID string, _, _ int) ([]model.Enrollment, int64, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			result = append(result, *e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

// ── Mock RatingRepository ──
// 聚合值从评分源数据重算后回写共享课程表，与仓储实现同语义

type mockRatingRepo struct {
	ratings map[string]*model.Rating // key: studentID|courseID
	courses *mockCourseRepo
	seq     int
}

func newMockRatingRepo(courses *mockCourseRepo) *mockRatingRepo {
	return &mockRatingRepo{
		ratings: make(map[string]*model.Rating),
		courses: courses,
	}
}

func (m *mockRatingRepo) Upsert(_ context.Context, rating *model.Rating) (*repository.CourseAggregate, error) {
	course, ok := m.courses.courses[rating.CourseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	key := enrollKey(rating.StudentID, rating.CourseID)
	if existing, exists := m.ratings[key]; exists {
		existing.Score = rating.Score
		existing.Review = rating.Review
		existing.UpdatedAt = time.Now()
	} else {
		m.seq++
		rating.RatingID = fmt.Sprintf("rat-%03d", m.seq)
		m.ratings[key] = rating
	}

	var sum, count int
	for _, r := range m.ratings {
		if r.CourseID == rating.CourseID {
			sum += r.Score
			count++
		}
	}
	agg := &repository.CourseAggregate{RatingCount: count}
	if count > 0 {
		agg.AverageRating = float64(sum) / float64(count)
	}
	course.AverageRating = agg.AverageRating
	course.RatingCount = agg.RatingCount
	return agg, nil
}

func (m *mockRatingRepo) Get(_ context.Context, studentID, courseID string) (*model.Rating, error) {
	if r, ok := m.ratings[enrollKey(studentID, courseID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRatingRepo) ListByCourse(_ context.Context, courseID string, _, _ int) ([]model.Rating, int64, error) {
	var result []model.Rating
	for _, r := range m.ratings {
		if r.CourseID == courseID {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock MaterialRepository ──

type mockMaterialRepo struct {
	materials map[string]*model.Material
	seq       int
}

func newMockMaterialRepo() *mockMaterialRepo {
	return &mockMaterialRepo{materials: make(map[string]*model.Material)}
}

func (m *mockMaterialRepo) Create(_ context.Context, material *model.Material) error {
	if material.MaterialID == "" {
		m.seq++
		material.MaterialID = fmt.Sprintf("mat-%03d", m.seq)
	}
	m.materials[material.MaterialID] = material
	return nil
}

// GetByID 返回副本，模拟仓储每次查询得到独立的行快照
func (m *mockMaterialRepo) GetByID(_ context.Context, id string) (*model.Material, error) {
	if mat, ok := m.materials[id]; ok {
		cp := *mat
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMaterialRepo) Update(_ context.Context, material *model.Material) error {
	m.materials[material.MaterialID] = material
	return nil
}

func (m *mockMaterialRepo) ListByCourse(_ context.Context, courseID string, folderID *string, _, _ int) ([]model.Material, int64, error) {
	var result []model.Material
	for _, mat := range m.materials {
		if mat.CourseID != courseID {
			continue
		}
		if folderID != nil && (mat.FolderID == nil || *mat.FolderID != *folderID) {
			continue
		}
		result = append(result, *mat)
	}
	return result, int64(len(result)), nil
}

func (m *mockMaterialRepo) ListByTeacher(_ context.Context, teacherID string, _, _ int) ([]model.Material, int64, error) {
	var result []model.Material
	for _, mat := range m.materials {
		if mat.TeacherID == teacherID {
			result = append(result, *mat)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock MaterialFolderRepository ──

type mockMaterialFolderRepo struct {
	folders map[string]*model.MaterialFolder
	seq     int
}

func newMockMaterialFolderRepo() *mockMaterialFolderRepo {
	return &mockMaterialFolderRepo{folders: make(map[string]*model.MaterialFolder)}
}

func (m *mockMaterialFolderRepo) Create(_ context.Context, folder *model.MaterialFolder) error {
	if folder.FolderID == "" {
		m.seq++
		folder.FolderID = fmt.Sprintf("fld-%03d", m.seq)
	}
	m.folders[folder.FolderID] = folder
	return nil
}

func (m *mockMaterialFolderRepo) GetByID(_ context.Context, id string) (*model.MaterialFolder, error) {
	if f, ok := m.folders[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMaterialFolderRepo) ListByCourse(_ context.Context, courseID string) ([]model.MaterialFolder, error) {
	var result []model.MaterialFolder
	for _, f := range m.folders {
		if f.CourseID == courseID {
			result = append(result, *f)
		}
	}
	return result, nil
}

// ── Mock MaterialAccessRepository ──
// 与 mockMaterialRepo 共享资料表，同步累加资料总计数

type mockMaterialAccessRepo struct {
	accesses  map[string]*model.MaterialAccess // key: userID|materialID
	materials *mockMaterialRepo
}

func newMockMaterialAccessRepo(materials *mockMaterialRepo) *mockMaterialAccessRepo {
	return &mockMaterialAccessRepo{
		accesses:  make(map[string]*model.MaterialAccess),
		materials: materials,
	}
}

func (m *mockMaterialAccessRepo) RecordAccess(_ context.Context, userID, materialID, action string) error {
	key := userID + "|" + materialID
	access, ok := m.accesses[key]
	if !ok {
		access = &model.MaterialAccess{UserID: userID, MaterialID: materialID}
		m.accesses[key] = access
	}
	access.LastAction = action
	access.LastAccessAt = time.Now()

	mat, exists := m.materials.materials[materialID]
	if action == model.AccessActionDownload {
		access.DownloadCount++
		if exists {
			mat.DownloadCount++
		}
	} else {
		access.ViewCount++
		if exists {
			mat.ViewCount++
		}
	}
	return nil
}

func (m *mockMaterialAccessRepo) ListByMaterial(_ context.Context, materialID string) ([]model.MaterialAccess, error) {
	var result []model.MaterialAccess
	for _, a := range m.accesses {
		if a.MaterialID == materialID {
			result = append(result, *a)
		}
	}
	return result, nil
}

// ── Mock LiveSessionRepository ──
// End 同时关闭共享参与表中的在场记录，与仓储事务同语义

type mockLiveSessionRepo struct {
	sessions     map[string]*model.LiveSession
	participants *mockLiveParticipantRepo
	enrollments  *mockEnrollmentRepo
	seq          int
}

func newMockLiveSessionRepo(participants *mockLiveParticipantRepo, enrollments *mockEnrollmentRepo) *mockLiveSessionRepo {
	return &mockLiveSessionRepo{
		sessions:     make(map[string]*model.LiveSession),
		participants: participants,
		enrollments:  enrollments,
	}
}

func (m *mockLiveSessionRepo) Create(_ context.Context, session *model.LiveSession) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("ses-%03d", m.seq)
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockLiveSessionRepo) GetByID(_ context.Context, id string) (*model.LiveSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLiveSessionRepo) Start(_ context.Context, id string, startedAt time.Time) error {
	s, ok := m.sessions[id]
	if !ok || s.Status != model.SessionStatusScheduled {
		return pkgerrors.ErrStateConflict
	}
	s.Status = model.SessionStatusLive
	s.StartedAt = &startedAt
	return nil
}

func (m *mockLiveSessionRepo) End(_ context.Context, id, from string, endedAt time.Time) error {
	s, ok := m.sessions[id]
	if !ok || s.Status != from {
		return pkgerrors.ErrStateConflict
	}
	s.Status = model.SessionStatusEnded
	s.EndedAt = &endedAt
	for _, p := range m.participants.participants {
		if p.SessionID == id && p.LeftAt == nil {
			left := endedAt
			p.LeftAt = &left
		}
	}
	return nil
}

func (m *mockLiveSessionRepo) AttachRecording(_ context.Context, id, recordingURL string) error {
	s, ok := m.sessions[id]
	if !ok || s.Status != model.SessionStatusEnded {
		return pkgerrors.ErrStateConflict
	}
	s.RecordingURL = recordingURL
	return nil
}

func (m *mockLiveSessionRepo) ListByCourse(_ context.Context, courseID string, _, _ int) ([]model.LiveSession, int64, error) {
	var result []model.LiveSession
	for _, s := range m.sessions {
		if s.CourseID == courseID {
			result = append(result, *s)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockLiveSessionRepo) ListUpcomingForStudent(_ context.Context, studentID string, after time.Time, _, _ int) ([]model.LiveSession, int64, error) {
	var result []model.LiveSession
	for _, s := range m.sessions {
		if s.Status != model.SessionStatusScheduled || !s.ScheduledAt.After(after) {
			continue
		}
		if _, ok := m.enrollments.enrollments[enrollKey(studentID, s.CourseID)]; !ok {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

// ── Mock LiveParticipantRepository ──

type mockLiveParticipantRepo struct {
	participants []*model.LiveParticipant
	sessions     *mockLiveSessionRepo
	createErr    error // 注入 Create 错误，模拟加入与结束竞争
	seq          int
}

func newMockLiveParticipantRepo() *mockLiveParticipantRepo {
	return &mockLiveParticipantRepo{}
}

func (m *mockLiveParticipantRepo) Create(_ context.Context, participant *model.LiveParticipant) error {
	if m.createErr != nil {
		return m.createErr
	}
	// 与真实实现一致：插入时复查课次状态
	if m.sessions != nil {
		s, ok := m.sessions.sessions[participant.SessionID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if s.Status != model.SessionStatusLive {
			return pkgerrors.ErrStateConflict
		}
	}
	for _, p := range m.participants {
		if p.SessionID == participant.SessionID && p.UserID == participant.UserID && p.LeftAt == nil {
			return pkgerrors.ErrDuplicateKey
		}
	}
	m.seq++
	participant.ParticipantID = fmt.Sprintf("par-%03d", m.seq)
	m.participants = append(m.participants, participant)
	return nil
}

func (m *mockLiveParticipantRepo) GetOpen(_ context.Context, sessionID, userID string) (*model.LiveParticipant, error) {
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.UserID == userID && p.LeftAt == nil {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLiveParticipantRepo) CloseOpen(_ context.Context, sessionID, userID string, leftAt time.Time) error {
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.UserID == userID && p.LeftAt == nil {
			left := leftAt
			p.LeftAt = &left
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockLiveParticipantRepo) ListBySession(_ context.Context, sessionID string, _, _ int) ([]model.LiveParticipant, int64, error) {
	var result []model.LiveParticipant
	for _, p := range m.participants {
		if p.SessionID == sessionID {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockLiveParticipantRepo) CountOpenBySession(_ context.Context, sessionID string) (int64, error) {
	var count int64
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.LeftAt == nil {
			count++
		}
	}
	return count, nil
}

// ── Mock LiveMessageRepository ──

type mockLiveMessageRepo struct {
	messages []*model.LiveMessage
	seq      int64
}

func newMockLiveMessageRepo() *mockLiveMessageRepo {
	return &mockLiveMessageRepo{}
}

func (m *mockLiveMessageRepo) Create(_ context.Context, message *model.LiveMessage) error {
	m.seq++
	message.MessageID = m.seq
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockLiveMessageRepo) ListBySession(_ context.Context, sessionID string, _, _ int) ([]model.LiveMessage, int64, error) {
	var result []model.LiveMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			result = append(result, *msg)
		}
	}
	return result, int64(len(result)), nil
}

// ── 全量 Mock 聚合 ──

type mockRepos struct {
	user            *mockUserRepo
	category        *mockCategoryRepo
	course          *mockCourseRepo
	enrollment      *mockEnrollmentRepo
	rating          *mockRatingRepo
	material        *mockMaterialRepo
	materialFolder  *mockMaterialFolderRepo
	materialAccess  *mockMaterialAccessRepo
	liveSession     *mockLiveSessionRepo
	liveParticipant *mockLiveParticipantRepo
	liveMessage     *mockLiveMessageRepo
}

// newMockRepos 构建共享底层数据的全量 Mock 仓储
func newMockRepos() (*repository.Repository, *mockRepos) {
	userRepo := newMockUserRepo()
	categoryRepo := newMockCategoryRepo()
	courseRepo := newMockCourseRepo()
	enrollmentRepo := newMockEnrollmentRepo(courseRepo)
	ratingRepo := newMockRatingRepo(courseRepo)
	materialRepo := newMockMaterialRepo()
	folderRepo := newMockMaterialFolderRepo()
	accessRepo := newMockMaterialAccessRepo(materialRepo)
	participantRepo := newMockLiveParticipantRepo()
	sessionRepo := newMockLiveSessionRepo(participantRepo, enrollmentRepo)
	participantRepo.sessions = sessionRepo
	messageRepo := newMockLiveMessageRepo()

	repo := &repository.Repository{
		User:            userRepo,
		Category:        categoryRepo,
		Course:          courseRepo,
		Enrollment:      enrollmentRepo,
		Rating:          ratingRepo,
		Material:        materialRepo,
		MaterialFolder:  folderRepo,
		MaterialAccess:  accessRepo,
		LiveSession:     sessionRepo,
		LiveParticipant: participantRepo,
		LiveMessage:     messageRepo,
	}
	mocks := &mockRepos{
		user:            userRepo,
		category:        categoryRepo,
		course:          courseRepo,
		enrollment:      enrollmentRepo,
		rating:          ratingRepo,
		material:        materialRepo,
		materialFolder:  folderRepo,
		materialAccess:  accessRepo,
		liveSession:     sessionRepo,
		liveParticipant: participantRepo,
		liveMessage:     messageRepo,
	}
	return repo, mocks
}
