package interaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

// SQLStore implements Store over database/sql. It is the single place that
// knows about the soft-delete active flag; every listing query filters on
// it so callers receive pre-filtered data.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) CreateElement(ctx context.Context, el Element) (Element, error) {
	if !evaluate.Known(el.Type) {
		return Element{}, errs.Validation("unknown element type %q", el.Type)
	}
	cfg, err := MarshalConfig(el.Config)
	if err != nil {
		return Element{}, errs.Validation("invalid element configuration: %v", err)
	}
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Element{}, err
	}
	defer tx.Rollback()

	if s.driver == "postgres" {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO interactive_elements
			   (video_id,elem_type,title,description,activate_at_sec,mandatory,points,time_limit_sec,config_json,active,created_at,updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,$10,$10) RETURNING id`,
			el.VideoID, string(el.Type), el.Title, el.Description, el.ActivateAtSec,
			el.Mandatory, el.Points, el.TimeLimitSec, string(cfg), now.Unix(),
		).Scan(&el.ID)
	} else {
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`INSERT INTO interactive_elements
			   (video_id,elem_type,title,description,activate_at_sec,mandatory,points,time_limit_sec,config_json,active,created_at,updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1,$10,$10)`,
			el.VideoID, string(el.Type), el.Title, el.Description, el.ActivateAtSec,
			el.Mandatory, el.Points, el.TimeLimitSec, string(cfg), now.Unix())
		if err == nil {
			el.ID, err = res.LastInsertId()
		}
	}
	if err != nil {
		return Element{}, err
	}

	for i := range el.Options {
		opt := &el.Options[i]
		opt.ElementID = el.ID
		if s.driver == "postgres" {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO element_options (element_id,label,correct,explanation,position)
				 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
				el.ID, opt.Label, opt.Correct, opt.Explanation, opt.Position,
			).Scan(&opt.ID)
		} else {
			var res sql.Result
			res, err = tx.ExecContext(ctx,
				`INSERT INTO element_options (element_id,label,correct,explanation,position)
				 VALUES ($1,$2,$3,$4,$5)`,
				el.ID, opt.Label, opt.Correct, opt.Explanation, opt.Position)
			if err == nil {
				opt.ID, err = res.LastInsertId()
			}
		}
		if err != nil {
			return Element{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Element{}, err
	}
	el.Active = true
	el.CreatedAt = now
	el.UpdatedAt = now
	return el, nil
}

func (s *SQLStore) GetElement(ctx context.Context, id int64) (Element, error) {
	row := s.db.QueryRowContext(ctx, selectElement+` WHERE id=$1`, id)
	el, err := scanElement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Element{}, errs.NotFound("element not found")
		}
		return Element{}, err
	}
	opts, err := s.optionsFor(ctx, []int64{el.ID})
	if err != nil {
		return Element{}, err
	}
	el.Options = opts[el.ID]
	return el, nil
}

func (s *SQLStore) ListByVideo(ctx context.Context, videoID int64) ([]Element, error) {
	return s.listElements(ctx,
		selectElement+` WHERE video_id=$1 AND active ORDER BY activate_at_sec, id`,
		videoID)
}

func (s *SQLStore) ListMandatoryDue(ctx context.Context, videoID int64, uptoSec float64) ([]Element, error) {
	return s.listElements(ctx,
		selectElement+` WHERE video_id=$1 AND active AND mandatory AND activate_at_sec<=$2 ORDER BY activate_at_sec, id`,
		videoID, uptoSec)
}

func (s *SQLStore) UpdateElement(ctx context.Context, id int64, upd ElementUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ActivateAtSec != nil {
		add("activate_at_sec", *upd.ActivateAtSec)
	}
	if upd.Mandatory != nil {
		add("mandatory", *upd.Mandatory)
	}
	if upd.Points != nil {
		add("points", *upd.Points)
	}
	if upd.TimeLimitSec != nil {
		add("time_limit_sec", *upd.TimeLimitSec)
	}
	if upd.Config != nil {
		cfg, err := MarshalConfig(upd.Config)
		if err != nil {
			return errs.Validation("invalid element configuration: %v", err)
		}
		add("config_json", string(cfg))
	}
	if len(sets) == 0 {
		return errs.Validation("no fields to update")
	}
	add("updated_at", time.Now().Unix())

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE interactive_elements SET %s WHERE id=$%d`,
		strings.Join(sets, ","), len(args))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *SQLStore) DeactivateElement(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interactive_elements SET active=$1, updated_at=$2 WHERE id=$3`,
		false, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (s *SQLStore) DeleteElement(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM element_options WHERE element_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM response_attempts WHERE element_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM interactive_elements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string, elementID int64) ([]Attempt, error) {
	return s.listAttempts(ctx,
		selectAttempt+` WHERE user_id=$1 AND element_id=$2 ORDER BY attempt_no`,
		userID, elementID)
}

func (s *SQLStore) ListAttemptsForVideo(ctx context.Context, userID string, videoID int64) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT ra.id,ra.user_id,ra.element_id,ra.attempt_no,ra.correct,ra.points,ra.payload_json,ra.latency_sec,ra.created_at
		 FROM response_attempts ra
		 JOIN interactive_elements ie ON ie.id = ra.element_id
		 WHERE ra.user_id=$1 AND ie.video_id=$2 AND ie.active
		 ORDER BY ra.element_id, ra.attempt_no`,
		userID, videoID)
}

// InsertAttempt writes one attempt row. Two concurrent submissions for the
// same (user, element) can race on the attempt number; the unique
// constraint exposes the loser, which retries with the next number.
func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	payload := a.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	for retry := 0; retry < 3; retry++ {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO response_attempts
			   (id,user_id,element_id,attempt_no,correct,points,payload_json,latency_sec,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			a.ID, a.UserID, a.ElementID, a.AttemptNo, a.Correct, a.Points,
			string(payload), a.LatencySec, a.CreatedAt.Unix())
		if err == nil {
			a.Payload = payload
			return a, nil
		}
		if isUniqueViolation(err) {
			a.AttemptNo++
			continue
		}
		return Attempt{}, err
	}
	return Attempt{}, errs.Conflict("concurrent submissions for this element, retry")
}

func (s *SQLStore) VideoProgress(ctx context.Context, userID string, videoID int64) ([]ElementProgress, error) {
	elements, err := s.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.ListAttemptsForVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	// Latest attempt per element, resolved in application code over the
	// ordered list rather than a correlated subquery.
	latest := make(map[int64]Attempt)
	counts := make(map[int64]int)
	for _, a := range attempts {
		counts[a.ElementID]++
		if prev, ok := latest[a.ElementID]; !ok || a.AttemptNo > prev.AttemptNo {
			latest[a.ElementID] = a
		}
	}

	out := make([]ElementProgress, 0, len(elements))
	for _, el := range elements {
		item := ElementProgress{
			ElementID:     el.ID,
			Title:         el.Title,
			Type:          el.Type,
			ActivateAtSec: el.ActivateAtSec,
			Mandatory:     el.Mandatory,
			PointsMax:     el.Points,
			AttemptCount:  counts[el.ID],
		}
		if a, ok := latest[el.ID]; ok {
			correct := a.Correct
			item.Attempted = true
			item.Correct = &correct
			item.PointsEarned = a.Points
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *SQLStore) ElementStats(ctx context.Context, elementID int64) (ElementStats, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM interactive_elements WHERE id=$1`, elementID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ElementStats{}, errs.NotFound("element not found")
	}
	if err != nil {
		return ElementStats{}, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END),0),
		        COALESCE(AVG(latency_sec),0),
		        COALESCE(AVG(attempt_no),0),
		        COALESCE(MAX(attempt_no),0)
		 FROM response_attempts WHERE element_id=$1`, elementID)
	st := ElementStats{ElementID: elementID}
	if err := row.Scan(&st.TotalAttempts, &st.CorrectCount, &st.AvgLatencySec, &st.AvgAttemptNo, &st.MaxAttemptNo); err != nil {
		return ElementStats{}, err
	}
	return st, nil
}

func (s *SQLStore) Ranking(ctx context.Context, videoID int64, limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ra.user_id,
		        COALESCE(SUM(ra.points),0),
		        COUNT(ra.id),
		        COALESCE(SUM(CASE WHEN ra.correct THEN 1 ELSE 0 END),0)
		 FROM response_attempts ra
		 JOIN interactive_elements ie ON ie.id = ra.element_id
		 WHERE ie.video_id=$1
		 GROUP BY ra.user_id
		 ORDER BY 2 DESC, 4 DESC
		 LIMIT $2`, videoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(&e.UserID, &e.TotalPoints, &e.Attempts, &e.CorrectCount); err != nil {
			return nil, err
		}
		if e.Attempts > 0 {
			e.AccuracyPct = float64(e.CorrectCount) / float64(e.Attempts) * 100
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) ResetProgress(ctx context.Context, userID string, videoID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM response_attempts
		 WHERE user_id=$1
		   AND element_id IN (SELECT id FROM interactive_elements WHERE video_id=$2)`,
		userID, videoID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

/* ---------------- scanning helpers ---------------- */

const selectElement = `SELECT id,video_id,elem_type,title,description,activate_at_sec,mandatory,points,time_limit_sec,config_json,active,created_at,updated_at
 FROM interactive_elements`

const selectAttempt = `SELECT id,user_id,element_id,attempt_no,correct,points,payload_json,latency_sec,created_at
 FROM response_attempts`

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(row scanner) (Element, error) {
	var el Element
	var typ, cfg string
	var created, updated int64
	if err := row.Scan(&el.ID, &el.VideoID, &typ, &el.Title, &el.Description,
		&el.ActivateAtSec, &el.Mandatory, &el.Points, &el.TimeLimitSec,
		&cfg, &el.Active, &created, &updated); err != nil {
		return Element{}, err
	}
	el.Type = evaluate.ElementType(typ)
	el.CreatedAt = time.Unix(created, 0)
	el.UpdatedAt = time.Unix(updated, 0)
	// A payload that fails to parse leaves Config nil; evaluation then
	// degrades to an incorrect verdict instead of failing the request.
	if parsed, err := ParseConfig(el.Type, []byte(cfg)); err == nil {
		el.Config = parsed
	}
	return el, nil
}

func (s *SQLStore) listElements(ctx context.Context, query string, args ...any) ([]Element, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Element
	var ids []int64
	for rows.Next() {
		el, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
		ids = append(ids, el.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	opts, err := s.optionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Options = opts[out[i].ID]
	}
	return out, nil
}

func (s *SQLStore) optionsFor(ctx context.Context, elementIDs []int64) (map[int64][]ElementOption, error) {
	placeholders := make([]string, len(elementIDs))
	args := make([]any, len(elementIDs))
	for i, id := range elementIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(
		`SELECT id,element_id,label,correct,explanation,position
		 FROM element_options WHERE element_id IN (%s)
		 ORDER BY element_id, position, id`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]ElementOption)
	for rows.Next() {
		var o ElementOption
		if err := rows.Scan(&o.ID, &o.ElementID, &o.Label, &o.Correct, &o.Explanation, &o.Position); err != nil {
			return nil, err
		}
		out[o.ElementID] = append(out[o.ElementID], o)
	}
	return out, rows.Err()
}

func (s *SQLStore) listAttempts(ctx context.Context, query string, args ...any) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var payload string
		var created int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.ElementID, &a.AttemptNo,
			&a.Correct, &a.Points, &payload, &a.LatencySec, &created); err != nil {
			return nil, err
		}
		a.Payload = []byte(payload)
		a.CreatedAt = time.Unix(created, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("element not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
