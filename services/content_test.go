package services

import (
	"context"
	"strings"
	"testing"

	"academy/models"
	"academy/models/blog"
	"academy/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonAccessPrecedence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	enrolled := seedUser(t, h.db, "enrolled@example.com", models.RoleUser)
	trial := seedUser(t, h.db, "trial@example.com", models.RoleUser)
	stranger := seedUser(t, h.db, "stranger@example.com", models.RoleUser)

	c := seedCourse(t, h.db, "go-basics", 0)
	lessons := seedLessons(t, h.db, c, 2)
	preview, gated := lessons[0], lessons[1]
	require.NoError(t, h.db.Model(&preview).Update("is_preview", true).Error)

	_, err := h.enrollments.Enroll(ctx, enrolled.ID, c.ID)
	require.NoError(t, err)
	_, err = h.subscriptions.StartTrial(ctx, trial.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		viewer *models.User
		lesson course.Lesson
		want   error
	}{
		{"preview anonymous", nil, preview, nil},
		{"gated anonymous", nil, gated, models.ErrForbidden},
		{"gated admin", &admin, gated, nil},
		{"gated enrolled", &enrolled, gated, nil},
		{"gated trial", &trial, gated, nil},
		{"gated stranger", &stranger, gated, models.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := h.content.Lesson(ctx, tt.viewer, c.ID, tt.lesson.ID)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lesson.ID, view.Lesson.ID)
		})
	}

	_, err = h.content.Lesson(ctx, &admin, c.ID+1, gated.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLessonHidesQuizAnswersFromLearners(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	c := seedCourse(t, h.db, "quiz", 0)
	lesson := seedLessons(t, h.db, c, 1)[0]
	require.NoError(t, h.db.Model(&lesson).Updates(map[string]interface{}{"is_preview": true, "content_type": course.ContentQuiz}).Error)

	q := course.QuizQuestion{LessonID: lesson.ID, Prompt: "2+2?", Options: []course.QuizOption{
		{OptionText: "4", IsCorrect: true},
		{OptionText: "5"},
	}}
	require.NoError(t, h.db.Create(&q).Error)

	view, err := h.content.Lesson(ctx, nil, c.ID, lesson.ID)
	require.NoError(t, err)
	require.Len(t, view.Lesson.Questions, 1)
	for _, o := range view.Lesson.Questions[0].Options {
		assert.False(t, o.IsCorrect)
	}

	view, err = h.content.Lesson(ctx, &admin, c.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, view.Lesson.Questions[0].Options[0].IsCorrect)
}

func TestArticleGateAndViews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reader := seedUser(t, h.db, "reader@example.com", models.RoleUser)
	subscriber := seedUser(t, h.db, "subscriber@example.com", models.RoleUser)

	_, _, err := h.subscriptions.Subscribe(ctx, subscriber.ID, Checkout{Plan: "MONTHLY", Method: "PAYPAL", Reference: "S"})
	require.NoError(t, err)

	body := strings.Repeat("word ", 450)
	premium := blog.Article{Title: "Deep dive", Slug: "deep-dive", Content: body, IsPremium: true, Published: true}
	open := blog.Article{Title: "News", Slug: "news", Content: "short <b>news</b>", Published: true}
	require.NoError(t, h.db.Create(&premium).Error)
	require.NoError(t, h.db.Create(&open).Error)
	assert.Equal(t, 2, premium.ReadingTime)

	view, err := h.content.Article(ctx, nil, "news")
	require.NoError(t, err)
	assert.True(t, view.Accessible)
	assert.Equal(t, 1, view.Article.ViewsCount)

	view, err = h.content.Article(ctx, &reader, "deep-dive")
	require.NoError(t, err)
	assert.False(t, view.Accessible)
	assert.Len(t, strings.Fields(view.Article.Content), 60)

	view, err = h.content.Article(ctx, &subscriber, "deep-dive")
	require.NoError(t, err)
	assert.True(t, view.Accessible)
	assert.Equal(t, body, view.Article.Content)

	var stored blog.Article
	require.NoError(t, h.db.First(&stored, premium.ID).Error)
	assert.Equal(t, 1, stored.ViewsCount)

	_, err = h.content.Article(ctx, nil, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCourseCatalogue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := seedCourse(t, h.db, "go-basics", 10)
	seedLessons(t, h.db, c, 3)
	hidden := seedCourse(t, h.db, "hidden", 10)
	require.NoError(t, h.db.Model(&hidden).Update("is_published", false).Error)

	list, total, err := h.content.Courses(ctx, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	detail, err := h.content.Course(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, detail.Modules, 1)
	assert.Len(t, detail.Modules[0].Lessons, 3)
	assert.Empty(t, detail.Modules[0].Lessons[0].TextContent)

	_, err = h.content.Course(ctx, hidden.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLapsedAccessWindowDeniesBeforeSweep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)

	c := seedCourse(t, h.db, "thirty-days", 0)
	days := 30
	require.NoError(t, h.db.Model(&c).Update("access_days", days).Error)
	c.AccessDays = &days
	lessons := seedLessons(t, h.db, c, 2)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, course.EnrollmentActive, e.Status)

	_, err = h.content.Lesson(ctx, &user, c.ID, lessons[1].ID)
	require.NoError(t, err)

	h.setClock(testNow.AddDate(0, 0, 31))

	_, err = h.content.Lesson(ctx, &user, c.ID, lessons[1].ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = h.progress.CompleteLesson(ctx, user.ID, lessons[1].ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	var stored course.Enrollment
	require.NoError(t, h.db.First(&stored, e.ID).Error)
	assert.Equal(t, course.EnrollmentActive, stored.Status, "status is left for the sweep")
	assert.True(t, stored.CanAccessCourse())
}
