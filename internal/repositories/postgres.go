package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmorate/backend/internal/db"
	"github.com/filmorate/backend/internal/models"
)

// PostgresFilmRepository provides PostgreSQL-backed persistence for films.
type PostgresFilmRepository struct {
	pool db.Pool
}

// NewPostgresFilmRepository constructs a film repository backed by PostgreSQL.
func NewPostgresFilmRepository(pool db.Pool) *PostgresFilmRepository {
	return &PostgresFilmRepository{pool: pool}
}

// Add inserts a film and its likes, returning the film with its new id.
func (r *PostgresFilmRepository) Add(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin insert film: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
        INSERT INTO films (name, description, release_date, duration)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, film.Name, film.Description, film.ReleaseDate.Time(), film.Duration)
	if err := row.Scan(&film.ID); err != nil {
		return models.Film{}, fmt.Errorf("insert film: %w", err)
	}

	if err := replaceEdges(ctx, tx, filmLikes, film.ID, film.Likes); err != nil {
		return models.Film{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Film{}, fmt.Errorf("commit insert film: %w", err)
	}

	return film.Clone(), nil
}

// Update replaces a film row and its full set of likes.
func (r *PostgresFilmRepository) Update(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin update film: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        UPDATE films
        SET name = $2, description = $3, release_date = $4, duration = $5
        WHERE id = $1
    `, film.ID, film.Name, film.Description, film.ReleaseDate.Time(), film.Duration)
	if err != nil {
		return models.Film{}, fmt.Errorf("update film: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Film{}, ErrNotFound
	}

	if err := replaceEdges(ctx, tx, filmLikes, film.ID, film.Likes); err != nil {
		return models.Film{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Film{}, fmt.Errorf("commit update film: %w", err)
	}

	return film.Clone(), nil
}

// Get loads a film with its likes.
func (r *PostgresFilmRepository) Get(ctx context.Context, id int64) (models.Film, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, name, description, release_date, duration
        FROM films
        WHERE id = $1
    `, id)

	film, err := scanFilm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Film{}, ErrNotFound
		}
		return models.Film{}, fmt.Errorf("select film: %w", err)
	}

	edges, err := loadEdges(ctx, r.pool, filmLikes, &id)
	if err != nil {
		return models.Film{}, err
	}
	film.Likes = edges[id].Clone()

	return film, nil
}

// List returns every film ordered by id.
func (r *PostgresFilmRepository) List(ctx context.Context) ([]models.Film, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, description, release_date, duration
        FROM films
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query films: %w", err)
	}
	defer rows.Close()

	films := []models.Film{}
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}
	rows.Close()

	edges, err := loadEdges(ctx, r.pool, filmLikes, nil)
	if err != nil {
		return nil, err
	}
	for i := range films {
		films[i].Likes = edges[films[i].ID].Clone()
	}

	return films, nil
}

// Delete removes a film; its likes cascade.
func (r *PostgresFilmRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM films WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	return nil
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Add inserts a user and its friend edges.
func (r *PostgresUserRepository) Add(ctx context.Context, user models.User) (models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin insert user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
        INSERT INTO users (email, login, name, birthday)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, user.Email, user.Login, user.Name, user.Birthday.Time())
	if err := row.Scan(&user.ID); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := replaceEdges(ctx, tx, userFriends, user.ID, user.Friends); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, fmt.Errorf("commit insert user: %w", err)
	}

	return user.Clone(), nil
}

// Update replaces a user row and its full set of outgoing friend edges.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin update user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        UPDATE users
        SET email = $2, login = $3, name = $4, birthday = $5
        WHERE id = $1
    `, user.ID, user.Email, user.Login, user.Name, user.Birthday.Time())
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, ErrNotFound
	}

	if err := replaceEdges(ctx, tx, userFriends, user.ID, user.Friends); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, fmt.Errorf("commit update user: %w", err)
	}

	return user.Clone(), nil
}

// Get loads a user with its friend ids.
func (r *PostgresUserRepository) Get(ctx context.Context, id int64) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        WHERE id = $1
    `, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	edges, err := loadEdges(ctx, r.pool, userFriends, &id)
	if err != nil {
		return models.User{}, err
	}
	user.Friends = edges[id].Clone()

	return user, nil
}

// List returns every user ordered by id.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	rows.Close()

	edges, err := loadEdges(ctx, r.pool, userFriends, nil)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Friends = edges[users[i].ID].Clone()
	}

	return users, nil
}

// Delete removes a user; likes and friend edges referencing it cascade.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// LinkFriends inserts both directions of a friend edge in one statement.
func (r *PostgresUserRepository) LinkFriends(ctx context.Context, userID, friendID int64) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO user_friends (user_id, friend_id)
        VALUES ($1, $2), ($2, $1)
        ON CONFLICT DO NOTHING
    `, userID, friendID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("link users %d and %d: %w", userID, friendID, ErrNotFound)
		}
		return fmt.Errorf("link users: %w", err)
	}
	return nil
}

// UnlinkFriends deletes both directions of a friend edge in one statement.
func (r *PostgresUserRepository) UnlinkFriends(ctx context.Context, userID, friendID int64) error {
	_, err := r.pool.Exec(ctx, `
        DELETE FROM user_friends
        WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
    `, userID, friendID)
	if err != nil {
		return fmt.Errorf("unlink users: %w", err)
	}
	return nil
}

// edgeTable names a two-column relation table keyed by owner id.
type edgeTable struct {
	name     string
	ownerCol string
	otherCol string
}

var (
	filmLikes   = edgeTable{name: "film_likes", ownerCol: "film_id", otherCol: "user_id"}
	userFriends = edgeTable{name: "user_friends", ownerCol: "user_id", otherCol: "friend_id"}
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func replaceEdges(ctx context.Context, tx pgx.Tx, table edgeTable, ownerID int64, ids models.IDSet) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.name, table.ownerCol), ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", table.name, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, table.name, table.ownerCol, table.otherCol)
	for _, id := range ids.Slice() {
		if _, err := tx.Exec(ctx, insert, ownerID, id); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("insert %s %d: %w", table.name, id, ErrNotFound)
			}
			return fmt.Errorf("insert %s: %w", table.name, err)
		}
	}

	return nil
}

// loadEdges reads relation rows grouped by owner. A nil ownerID loads the whole table.
func loadEdges(ctx context.Context, q querier, table edgeTable, ownerID *int64) (map[int64]models.IDSet, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if ownerID != nil {
		rows, err = q.Query(ctx, fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`, table.ownerCol, table.otherCol, table.name, table.ownerCol), *ownerID)
	} else {
		rows, err = q.Query(ctx, fmt.Sprintf(`SELECT %s, %s FROM %s`, table.ownerCol, table.otherCol, table.name))
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table.name, err)
	}
	defer rows.Close()

	edges := make(map[int64]models.IDSet)
	for rows.Next() {
		var owner, other int64
		if err := rows.Scan(&owner, &other); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table.name, err)
		}
		edges[owner] = edges[owner].Add(other)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table.name, err)
	}

	return edges, nil
}

func scanFilm(row pgx.Row) (models.Film, error) {
	var (
		film    models.Film
		release time.Time
	)
	if err := row.Scan(&film.ID, &film.Name, &film.Description, &release, &film.Duration); err != nil {
		return models.Film{}, err
	}
	film.ReleaseDate = models.DateOf(release)
	return film, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user     models.User
		birthday time.Time
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &birthday); err != nil {
		return models.User{}, err
	}
	user.Birthday = models.DateOf(birthday)
	return user, nil
}

var _ FilmRepository = (*PostgresFilmRepository)(nil)
var _ UserRepository = (*PostgresUserRepository)(nil)
var _ FriendshipStore = (*PostgresUserRepository)(nil)
