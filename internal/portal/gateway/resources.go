package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/edulearn/lms/internal/core/domain"
)

// The resource clients below mirror the REST contracts of the course, user,
// lesson and notification services. Payloads are forwarded untouched.

type CoursesAPI struct{ c *Client }

func (c *Client) Courses() *CoursesAPI { return &CoursesAPI{c: c} }

// List accepts the catalog filters (category, level, search, page...).
func (a *CoursesAPI) List(ctx context.Context, query url.Values) ([]domain.Course, error) {
	var out []domain.Course
	err := a.c.getData(ctx, withQuery("/courses", query), &out)
	return out, err
}

func (a *CoursesAPI) Get(ctx context.Context, id string) (*domain.Course, error) {
	var out domain.Course
	if err := a.c.getData(ctx, "/courses/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CoursesAPI) Create(ctx context.Context, payload any) (*domain.Course, error) {
	var out domain.Course
	if err := a.c.sendData(ctx, http.MethodPost, "/courses", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CoursesAPI) Update(ctx context.Context, id string, payload any) (*domain.Course, error) {
	var out domain.Course
	if err := a.c.sendData(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CoursesAPI) Delete(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil)
}

func (a *CoursesAPI) Enroll(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodPost, "/courses/"+url.PathEscape(id)+"/enroll", nil, nil)
}

type UsersAPI struct{ c *Client }

func (c *Client) Users() *UsersAPI { return &UsersAPI{c: c} }

func (a *UsersAPI) List(ctx context.Context, query url.Values) ([]domain.User, error) {
	var out []domain.User
	err := a.c.getData(ctx, withQuery("/users", query), &out)
	return out, err
}

func (a *UsersAPI) Get(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	if err := a.c.getData(ctx, "/users/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Update(ctx context.Context, id string, payload any) (*domain.User, error) {
	var out domain.User
	if err := a.c.sendData(ctx, http.MethodPut, "/users/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *UsersAPI) Delete(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

type LessonsAPI struct{ c *Client }

func (c *Client) Lessons() *LessonsAPI { return &LessonsAPI{c: c} }

func (a *LessonsAPI) ListByCourse(ctx context.Context, courseID string) ([]domain.Lesson, error) {
	var out []domain.Lesson
	err := a.c.getData(ctx, "/courses/"+url.PathEscape(courseID)+"/lessons", &out)
	return out, err
}

func (a *LessonsAPI) Get(ctx context.Context, id string) (*domain.Lesson, error) {
	var out domain.Lesson
	if err := a.c.getData(ctx, "/lessons/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *LessonsAPI) Create(ctx context.Context, courseID string, payload any) (*domain.Lesson, error) {
	var out domain.Lesson
	if err := a.c.sendData(ctx, http.MethodPost, "/courses/"+url.PathEscape(courseID)+"/lessons", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *LessonsAPI) Update(ctx context.Context, id string, payload any) (*domain.Lesson, error) {
	var out domain.Lesson
	if err := a.c.sendData(ctx, http.MethodPut, "/lessons/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *LessonsAPI) Delete(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodDelete, "/lessons/"+url.PathEscape(id), nil, nil)
}

func (a *LessonsAPI) Complete(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodPost, "/lessons/"+url.PathEscape(id)+"/complete", nil, nil)
}

type NotificationsAPI struct{ c *Client }

func (c *Client) Notifications() *NotificationsAPI { return &NotificationsAPI{c: c} }

func (a *NotificationsAPI) List(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	err := a.c.getData(ctx, "/notifications", &out)
	return out, err
}

func (a *NotificationsAPI) MarkRead(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (a *NotificationsAPI) MarkAllRead(ctx context.Context) error {
	return a.c.sendData(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

func (a *NotificationsAPI) Delete(ctx context.Context, id string) error {
	return a.c.sendData(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil)
}
