package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
)

// SQLStore persists videos and watch progress. Queries use $n placeholders,
// which both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutVideo(ctx context.Context, v Video) (Video, error) {
	if s.driver == "postgres" {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO videos (course_id,module_id,position,title,duration_sec,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			v.CourseID, v.ModuleID, v.Position, v.Title, v.DurationSec, time.Now().Unix(),
		).Scan(&v.ID)
		if err != nil {
			return Video{}, err
		}
		return v, nil
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (course_id,module_id,position,title,duration_sec,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		v.CourseID, v.ModuleID, v.Position, v.Title, v.DurationSec, time.Now().Unix())
	if err != nil {
		return Video{}, err
	}
	v.ID, err = res.LastInsertId()
	if err != nil {
		return Video{}, err
	}
	return v, nil
}

func (s *SQLStore) GetVideo(ctx context.Context, id int64) (Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,module_id,position,title,duration_sec FROM videos WHERE id=$1`, id)
	var v Video
	if err := row.Scan(&v.ID, &v.CourseID, &v.ModuleID, &v.Position, &v.Title, &v.DurationSec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Video{}, errs.NotFound("video not found")
		}
		return Video{}, err
	}
	return v, nil
}

func (s *SQLStore) GetWatchProgress(ctx context.Context, userID string, videoID int64) (*WatchProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id,video_id,seconds_watched,completed,updated_at
		 FROM watch_progress WHERE user_id=$1 AND video_id=$2`, userID, videoID)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) SaveWatchProgress(ctx context.Context, rec WatchProgress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watch_progress (user_id,video_id,seconds_watched,completed,updated_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id,video_id) DO UPDATE SET
		   seconds_watched=EXCLUDED.seconds_watched,
		   completed=EXCLUDED.completed,
		   updated_at=EXCLUDED.updated_at`,
		rec.UserID, rec.VideoID, rec.SecondsWatched, rec.Completed, rec.UpdatedAt.Unix())
	return err
}

func (s *SQLStore) ListWatchProgress(ctx context.Context, userID string) ([]WatchProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,video_id,seconds_watched,completed,updated_at
		 FROM watch_progress WHERE user_id=$1 ORDER BY video_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WatchProgress
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) ResetWatchProgress(ctx context.Context, userID string, videoID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watch_progress WHERE user_id=$1 AND video_id=$2`, userID, videoID)
	return err
}

func (s *SQLStore) LastCompletedOrder(ctx context.Context, userID string, courseID int64) (*int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT v.position
		 FROM watch_progress wp
		 JOIN videos v ON v.id = wp.video_id
		 WHERE wp.user_id=$1 AND v.course_id=$2 AND wp.completed
		 ORDER BY v.position DESC
		 LIMIT 1`, userID, courseID)
	var pos int
	if err := row.Scan(&pos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (WatchProgress, error) {
	var rec WatchProgress
	var updated int64
	if err := row.Scan(&rec.UserID, &rec.VideoID, &rec.SecondsWatched, &rec.Completed, &updated); err != nil {
		return WatchProgress{}, err
	}
	rec.UpdatedAt = time.Unix(updated, 0)
	return rec, nil
}
