package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

const (
	bookColumns   = `id, title, author, price, cover_image, description, genres, publish_date, isbn, rating, in_stock`
	userColumns   = `id, email, first_name, last_name, avatar, country, city, age, pass`
	reviewColumns = `r.id, r.book_id, r.user_id, u.first_name || ' ' || u.last_name, u.avatar, r.rating, r.comment, r.created_at`
)

type DBStorage struct {
	pool      *pgxpool.Pool
	hashCost  int
	dummyHash []byte
}

func NewDB(ctx context.Context, addr string, hashCost int) (*DBStorage, error) {
	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DBStorage{pool: pool, hashCost: hashCost, dummyHash: dummyHash(hashCost)}, nil
}

func (dbs *DBStorage) Close() {
	dbs.pool.Close()
}

// Seed inserts the records that are not in the database yet.
func (dbs *DBStorage) Seed(ctx context.Context, recs Records) (err error) {
	log := logger.Get()
	tx, err := dbs.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for _, b := range recs.Books {
		_, err = tx.Exec(ctx, `INSERT INTO books (`+bookColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) ON CONFLICT DO NOTHING`,
			b.ID, b.Title, b.Author, b.Price, b.CoverImage, b.Description, b.Genre, b.PublishDate.Time, b.ISBN, b.Rating, b.InStock)
		if err != nil {
			log.Error().Err(err).Int("bid", b.ID).Msg("seed book failed")
			return err
		}
	}
	for _, u := range recs.Users {
		_, err = tx.Exec(ctx, `INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT DO NOTHING`,
			u.ID, u.Email, u.FirstName, u.LastName, u.Avatar, u.Country, u.City, u.Age, u.PassHash)
		if err != nil {
			log.Error().Err(err).Int("uid", u.ID).Msg("seed user failed")
			return err
		}
	}
	for _, r := range recs.Reviews {
		_, err = tx.Exec(ctx, `INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
			r.ID, r.BookID, r.UserID, r.Rating, r.Comment, r.CreatedAt)
		if err != nil {
			log.Error().Err(err).Int("rid", r.ID).Msg("seed review failed")
			return err
		}
	}
	for _, table := range []string{"users", "reviews"} {
		_, err = tx.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`, table))
		if err != nil {
			return err
		}
	}
	log.Info().Int("books", len(recs.Books)).Int("users", len(recs.Users)).Msg("records seeded")
	return nil
}

func scanBook(row pgx.Row) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.CoverImage, &b.Description, &b.Genre,
		&b.PublishDate.Time, &b.ISBN, &b.Rating, &b.InStock)
	return b, err
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Avatar, &u.Country, &u.City, &u.Age, &u.PassHash)
	return u, err
}

func scanReview(row pgx.Row) (models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.UserName, &r.UserAvatar, &r.Rating, &r.Comment, &r.CreatedAt)
	return r, err
}

func (dbs *DBStorage) GetBooks(ctx context.Context) ([]models.Book, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	rows, err := dbs.pool.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		log.Error().Err(err).Msg("failed get all books from db")
		return nil, err
	}
	defer rows.Close()

	books := make([]models.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error().Err(err).Msg("failed to scan data from db")
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (dbs *DBStorage) GetBook(ctx context.Context, id int) (models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	book, err := scanBook(dbs.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, storerrors.ErrBookNotFound
		}
		logger.Get().Error().Err(err).Msg("failed to scan data from db")
		return models.Book{}, err
	}
	return book, nil
}

func (dbs *DBStorage) SaveUser(ctx context.Context, user models.User, password string) (models.User, error) {
	log := logger.Get()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), dbs.hashCost)
	if err != nil {
		log.Error().Err(err).Msg("save user failed")
		return models.User{}, err
	}
	user.PassHash = string(hash)

	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	err = dbs.pool.QueryRow(ctx, `INSERT INTO users (email, first_name, last_name, avatar, country, city, age, pass)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		user.Email, user.FirstName, user.LastName, user.Avatar, user.Country, user.City, user.Age, user.PassHash).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.User{}, storerrors.ErrUserExists
		}
		log.Error().Err(err).Msg("failed to insert user")
		return models.User{}, err
	}
	log.Debug().Int("uid", user.ID).Msg("user saved")
	return user, nil
}

func (dbs *DBStorage) ValidUser(ctx context.Context, email, password string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	user, err := scanUser(dbs.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dbs.dummyHash, []byte(password))
			return models.User{}, storerrors.ErrUserNotFound
		}
		logger.Get().Error().Err(err).Msg("failed scan db data")
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return models.User{}, storerrors.ErrInvalidPassword
	}
	return user, nil
}

func (dbs *DBStorage) GetUser(ctx context.Context, id int) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	user, err := scanUser(dbs.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storerrors.ErrUserNotFound
		}
		logger.Get().Error().Err(err).Msg("failed scan db data")
		return models.User{}, err
	}
	return user, nil
}

func (dbs *DBStorage) UpdateUser(ctx context.Context, id int, upd models.ProfileUpdate) (models.User, error) {
	user, err := dbs.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user = upd.Apply(user)

	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	_, err = dbs.pool.Exec(ctx, `UPDATE users SET first_name = $1, last_name = $2, avatar = $3, country = $4, city = $5, age = $6
		WHERE id = $7`, user.FirstName, user.LastName, user.Avatar, user.Country, user.City, user.Age, id)
	if err != nil {
		logger.Get().Error().Err(err).Int("uid", id).Msg("failed to update user")
		return models.User{}, err
	}
	return user, nil
}

func (dbs *DBStorage) ChangePassword(ctx context.Context, id int, current, next string) error {
	user, err := dbs.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(current)); err != nil {
		return storerrors.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), dbs.hashCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	_, err = dbs.pool.Exec(ctx, `UPDATE users SET pass = $1 WHERE id = $2`, string(hash), id)
	return err
}

func (dbs *DBStorage) GetReviewsByBook(ctx context.Context, bookID int, asc bool) ([]models.Review, error) {
	return dbs.getReviews(ctx, "book_id", bookID, asc)
}

func (dbs *DBStorage) GetReviewsByUser(ctx context.Context, userID int, asc bool) ([]models.Review, error) {
	return dbs.getReviews(ctx, "user_id", userID, asc)
}

func (dbs *DBStorage) getReviews(ctx context.Context, column string, id int, asc bool) ([]models.Review, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	order := "DESC"
	if asc {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM reviews r JOIN users u ON r.user_id = u.id
		WHERE r.%s = $1 ORDER BY r.created_at %s, r.id`, reviewColumns, column, order)
	rows, err := dbs.pool.Query(ctx, query, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reviews")
		return nil, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			log.Error().Err(err).Msg("failed to scan review row")
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (dbs *DBStorage) getReview(ctx context.Context, id int) (models.Review, error) {
	r, err := scanReview(dbs.pool.QueryRow(ctx, `SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON r.user_id = u.id WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Review{}, storerrors.ErrReviewNotFound
	}
	return r, err
}

func (dbs *DBStorage) SaveReview(ctx context.Context, review models.Review) (models.Review, error) {
	log := logger.Get()
	if _, err := dbs.GetBook(ctx, review.BookID); err != nil {
		return models.Review{}, err
	}
	if _, err := dbs.GetUser(ctx, review.UserID); err != nil {
		return models.Review{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	var id int
	err := dbs.pool.QueryRow(ctx, `INSERT INTO reviews (book_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		review.BookID, review.UserID, review.Rating, review.Comment, time.Now().UTC()).Scan(&id)
	if err != nil {
		log.Error().Err(err).Msg("failed to save review")
		return models.Review{}, err
	}
	log.Info().Int("rid", id).Msg("review saved successfully")
	return dbs.getReview(ctx, id)
}

func (dbs *DBStorage) authoredReview(ctx context.Context, id, userID int) (models.Review, error) {
	r, err := dbs.getReview(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if r.UserID != userID {
		return models.Review{}, storerrors.ErrNotReviewAuthor
	}
	return r, nil
}

func (dbs *DBStorage) UpdateReview(ctx context.Context, id, userID int, upd models.ReviewUpdate) (models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	r, err := dbs.authoredReview(ctx, id, userID)
	if err != nil {
		return models.Review{}, err
	}
	r = upd.Apply(r)
	if _, err := dbs.pool.Exec(ctx, `UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3`, r.Rating, r.Comment, id); err != nil {
		logger.Get().Error().Err(err).Int("rid", id).Msg("failed to update review")
		return models.Review{}, err
	}
	return r, nil
}

func (dbs *DBStorage) DeleteReview(ctx context.Context, id, userID int) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	if _, err := dbs.authoredReview(ctx, id, userID); err != nil {
		log.Warn().Err(err).Int("rid", id).Msg("delete review refused")
		return err
	}
	res, err := dbs.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete review")
		return err
	}
	if res.RowsAffected() == 0 {
		return storerrors.ErrReviewNotFound
	}
	log.Info().Int("rid", id).Msg("review deleted successfully")
	return nil
}

func Migrations(dbDsn string, migrationsPath string) error {
	log := logger.Get()
	migratePath := fmt.Sprintf("file://%s", migrationsPath)
	m, err := migrate.New(migratePath, dbDsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("no migrations apply")
			return nil
		}
		return err
	}
	log.Info().Msg("all migrations apply")
	return nil
}
