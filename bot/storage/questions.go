// Package storage persists user questions and the admin's answers.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"askrelay/core/logger"
)

var (
	// ErrNotFound is returned when no question exists with the given id.
	ErrNotFound = errors.New("question not found")
	// ErrAlreadyAnswered is returned when resolving a question that
	// already carries an answer.
	ErrAlreadyAnswered = errors.New("question already answered")
)

// Question is one row of the questions table.
type Question struct {
	ID       int64  `db:"id"`
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Question string `db:"question"`
	Answered bool   `db:"answered"`
	Answer   string `db:"answer"`
}

const componentQuestions = "service.questions"

// Store provides access to the questions table.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps the given database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save inserts a new pending question and returns its assigned id.
func (s *Store) Save(ctx context.Context, userID int64, username, question string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (user_id, username, question) VALUES (?, ?, ?)`,
		userID, username, question,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, componentQuestions, "question.saved",
		slog.Int64("question_id", id),
		slog.Int64("user_id", userID),
	)
	return id, nil
}

// Pending returns all unanswered questions in id order.
func (s *Store) Pending(ctx context.Context) ([]Question, error) {
	var out []Question
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, user_id, username, question, answered, answer
		   FROM questions WHERE answered = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Resolved returns all answered questions in id order.
func (s *Store) Resolved(ctx context.Context) ([]Question, error) {
	var out []Question
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, user_id, username, question, answered, answer
		   FROM questions WHERE answered = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ByUsername returns all questions asked by the given username.
func (s *Store) ByUsername(ctx context.Context, username string) ([]Question, error) {
	var out []Question
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, user_id, username, question, answered, answer
		   FROM questions WHERE username = ? ORDER BY id`, username)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ByID fetches one pending question. It returns ErrNotFound when the id
// does not exist and ErrAlreadyAnswered when the question was resolved.
func (s *Store) ByID(ctx context.Context, id int64) (*Question, error) {
	var q Question
	err := s.db.GetContext(ctx, &q,
		`SELECT id, user_id, username, question, answered, answer
		   FROM questions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if q.Answered {
		return nil, ErrAlreadyAnswered
	}
	return &q, nil
}

// Resolve records an answer for a pending question. The guard on
// answered = 0 makes the operation reject a second resolution.
func (s *Store) Resolve(ctx context.Context, id int64, answer string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET answered = 1, answer = ? WHERE id = ? AND answered = 0`,
		answer, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := s.db.GetContext(ctx, &exists,
			`SELECT COUNT(*) FROM questions WHERE id = ?`, id); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrAlreadyAnswered
	}
	logger.Info(ctx, componentQuestions, "question.resolve",
		slog.Int64("question_id", id),
	)
	return nil
}

// Counts reports the number of pending and resolved questions.
func (s *Store) Counts(ctx context.Context) (pending, resolved int, err error) {
	err = s.db.GetContext(ctx, &pending,
		`SELECT COUNT(*) FROM questions WHERE answered = 0`)
	if err != nil {
		return 0, 0, err
	}
	err = s.db.GetContext(ctx, &resolved,
		`SELECT COUNT(*) FROM questions WHERE answered = 1`)
	if err != nil {
		return 0, 0, err
	}
	return pending, resolved, nil
}
