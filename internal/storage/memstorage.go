package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

// MemStorage keeps the record store in process memory. Books never change
// after construction; users and reviews are guarded by mu.
type MemStorage struct {
	books     []models.Book
	hashCost  int
	dummyHash []byte

	mu           sync.RWMutex
	users        map[int]models.User
	reviews      []models.Review
	nextUserID   int
	nextReviewID int
	now          func() time.Time
}

func New(recs Records, hashCost int) *MemStorage {
	ms := &MemStorage{
		books:     slices.Clone(recs.Books),
		hashCost:  hashCost,
		dummyHash: dummyHash(hashCost),
		users:     make(map[int]models.User, len(recs.Users)),
		reviews:   slices.Clone(recs.Reviews),
		now:       time.Now,
	}
	for _, u := range recs.Users {
		ms.users[u.ID] = u
		ms.nextUserID = max(ms.nextUserID, u.ID)
	}
	for _, r := range recs.Reviews {
		ms.nextReviewID = max(ms.nextReviewID, r.ID)
	}
	return ms
}

func (ms *MemStorage) GetBooks(_ context.Context) ([]models.Book, error) {
	return slices.Clone(ms.books), nil
}

func (ms *MemStorage) GetBook(_ context.Context, id int) (models.Book, error) {
	for _, b := range ms.books {
		if b.ID == id {
			return b, nil
		}
	}
	logger.Get().Debug().Int("bid", id).Msg("book not found")
	return models.Book{}, storerrors.ErrBookNotFound
}

func (ms *MemStorage) SaveUser(_ context.Context, user models.User, password string) (models.User, error) {
	log := logger.Get()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), ms.hashCost)
	if err != nil {
		log.Error().Err(err).Msg("hash password failed")
		return models.User{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.findUser(user.Email); ok {
		return models.User{}, storerrors.ErrUserExists
	}
	ms.nextUserID++
	user.ID = ms.nextUserID
	user.PassHash = string(hash)
	ms.users[user.ID] = user
	log.Debug().Int("uid", user.ID).Msg("user saved")
	return user, nil
}

func (ms *MemStorage) ValidUser(_ context.Context, email, password string) (models.User, error) {
	ms.mu.RLock()
	user, ok := ms.findUser(email)
	ms.mu.RUnlock()
	if !ok {
		_ = bcrypt.CompareHashAndPassword(ms.dummyHash, []byte(password))
		return models.User{}, storerrors.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return models.User{}, storerrors.ErrInvalidPassword
	}
	return user, nil
}

// dummyHash is compared against when an email is unknown, so a miss costs
// as much as a wrong password.
func dummyHash(cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		logger.Get().Error().Err(err).Int("cost", cost).Msg("dummy hash failed")
	}
	return hash
}

func (ms *MemStorage) GetUser(_ context.Context, id int) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	user, ok := ms.users[id]
	if !ok {
		logger.Get().Error().Int("uid", id).Msg("user not found")
		return models.User{}, storerrors.ErrUserNotFound
	}
	return user, nil
}

func (ms *MemStorage) UpdateUser(_ context.Context, id int, upd models.ProfileUpdate) (models.User, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	user, ok := ms.users[id]
	if !ok {
		return models.User{}, storerrors.ErrUserNotFound
	}
	user = upd.Apply(user)
	ms.users[id] = user
	ms.syncReviewAuthor(user)
	return user, nil
}

func (ms *MemStorage) ChangePassword(_ context.Context, id int, current, next string) error {
	ms.mu.RLock()
	user, ok := ms.users[id]
	ms.mu.RUnlock()
	if !ok {
		return storerrors.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(current)); err != nil {
		return storerrors.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), ms.hashCost)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	user = ms.users[id]
	user.PassHash = string(hash)
	ms.users[id] = user
	return nil
}

func (ms *MemStorage) GetReviewsByBook(_ context.Context, bookID int, asc bool) ([]models.Review, error) {
	return ms.getReviews(func(r models.Review) bool { return r.BookID == bookID }, asc), nil
}

func (ms *MemStorage) GetReviewsByUser(_ context.Context, userID int, asc bool) ([]models.Review, error) {
	return ms.getReviews(func(r models.Review) bool { return r.UserID == userID }, asc), nil
}

func (ms *MemStorage) getReviews(keep func(models.Review) bool, asc bool) []models.Review {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	reviews := make([]models.Review, 0)
	for _, r := range ms.reviews {
		if keep(r) {
			reviews = append(reviews, r)
		}
	}
	slices.SortStableFunc(reviews, func(a, b models.Review) int {
		if asc {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reviews
}

func (ms *MemStorage) SaveReview(ctx context.Context, review models.Review) (models.Review, error) {
	if _, err := ms.GetBook(ctx, review.BookID); err != nil {
		return models.Review{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	user, ok := ms.users[review.UserID]
	if !ok {
		return models.Review{}, storerrors.ErrUserNotFound
	}
	ms.nextReviewID++
	review.ID = ms.nextReviewID
	review.UserName = user.FullName()
	review.UserAvatar = user.Avatar
	review.CreatedAt = ms.now().UTC()
	ms.reviews = append(ms.reviews, review)
	logger.Get().Info().Int("rid", review.ID).Int("bid", review.BookID).Msg("review saved")
	return review, nil
}

func (ms *MemStorage) UpdateReview(_ context.Context, id, userID int, upd models.ReviewUpdate) (models.Review, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	i, err := ms.authoredReview(id, userID)
	if err != nil {
		return models.Review{}, err
	}
	ms.reviews[i] = upd.Apply(ms.reviews[i])
	return ms.reviews[i], nil
}

func (ms *MemStorage) DeleteReview(_ context.Context, id, userID int) error {
	log := logger.Get()
	ms.mu.Lock()
	defer ms.mu.Unlock()
	i, err := ms.authoredReview(id, userID)
	if err != nil {
		log.Warn().Err(err).Int("rid", id).Int("uid", userID).Msg("delete review refused")
		return err
	}
	ms.reviews = slices.Delete(ms.reviews, i, i+1)
	log.Info().Int("rid", id).Msg("review deleted successfully")
	return nil
}

func (ms *MemStorage) authoredReview(id, userID int) (int, error) {
	i := slices.IndexFunc(ms.reviews, func(r models.Review) bool { return r.ID == id })
	if i < 0 {
		return -1, storerrors.ErrReviewNotFound
	}
	if ms.reviews[i].UserID != userID {
		return -1, storerrors.ErrNotReviewAuthor
	}
	return i, nil
}

func (ms *MemStorage) findUser(email string) (models.User, bool) {
	for _, user := range ms.users {
		if strings.EqualFold(user.Email, email) {
			return user, true
		}
	}
	return models.User{}, false
}

func (ms *MemStorage) syncReviewAuthor(user models.User) {
	for i := range ms.reviews {
		if ms.reviews[i].UserID == user.ID {
			ms.reviews[i].UserName = user.FullName()
			ms.reviews[i].UserAvatar = user.Avatar
		}
	}
}
