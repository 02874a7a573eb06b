package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"lms-backend/internal/domain/course"
	"lms-backend/internal/domain/user"
)

type lectureDocument struct {
	ID          string        `bson:"_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Media       mediaDocument `bson:"lecture"`
}

type courseDocument struct {
	ID               string            `bson:"_id"`
	Title            string            `bson:"title"`
	Description      string            `bson:"description"`
	Category         string            `bson:"category"`
	CreatedBy        string            `bson:"created_by"`
	Thumbnail        mediaDocument     `bson:"thumbnail"`
	Lectures         []lectureDocument `bson:"lectures"`
	NumberOfLectures int               `bson:"number_of_lectures"`
	CreatedAt        time.Time         `bson:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at"`
}

// CourseRepository stores lectures embedded in their course document.
type CourseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(s *Store) *CourseRepository {
	return &CourseRepository{coll: s.db.Collection(coursesCollection)}
}

func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	now := time.Now()
	c.ID = uuid.New()
	c.Lectures = nil
	c.NumberOfLectures = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toCourseDocument(c)); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) List(ctx context.Context) ([]*course.Course, error) {
	opts := options.Find().
		SetProjection(bson.M{"lectures": 0}).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []courseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}

	courses := make([]*course.Course, 0, len(docs))
	for i := range docs {
		c, err := toCourseEntity(&docs[i])
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, courseID uuid.UUID) (*course.Course, error) {
	var doc courseDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": courseID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, course.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return toCourseEntity(&doc)
}

// AddLecture pushes the lecture and bumps the counter in one atomic update.
func (r *CourseRepository) AddLecture(ctx context.Context, courseID uuid.UUID, l *course.Lecture) (*course.Course, error) {
	l.ID = uuid.New()

	update := bson.M{
		"$push": bson.M{"lectures": toLectureDocument(l)},
		"$inc":  bson.M{"number_of_lectures": 1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc courseDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": courseID.String()}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, course.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add lecture: %w", err)
	}
	return toCourseEntity(&doc)
}

func (r *CourseRepository) RemoveLecture(ctx context.Context, courseID, lectureID uuid.UUID) (*course.Lecture, error) {
	filter := bson.M{"_id": courseID.String(), "lectures._id": lectureID.String()}
	update := bson.M{
		"$pull": bson.M{"lectures": bson.M{"_id": lectureID.String()}},
		"$inc":  bson.M{"number_of_lectures": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before courseDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": courseID.String()})
		if countErr != nil {
			return nil, fmt.Errorf("failed to get course: %w", countErr)
		}
		if n == 0 {
			return nil, course.ErrCourseNotFound
		}
		return nil, course.ErrLectureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove lecture: %w", err)
	}

	removed, ok := findLecture(before.Lectures, lectureID.String())
	if !ok {
		return nil, course.ErrLectureNotFound
	}
	l, err := toLectureEntity(&removed)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func findLecture(lectures []lectureDocument, id string) (lectureDocument, bool) {
	for _, l := range lectures {
		if l.ID == id {
			return l, true
		}
	}
	return lectureDocument{}, false
}

func toCourseDocument(c *course.Course) *courseDocument {
	doc := &courseDocument{
		ID:               c.ID.String(),
		Title:            c.Title,
		Description:      c.Description,
		Category:         c.Category,
		CreatedBy:        c.CreatedBy,
		Thumbnail:        mediaDocument{PublicID: c.Thumbnail.PublicID, SecureURL: c.Thumbnail.SecureURL},
		Lectures:         []lectureDocument{},
		NumberOfLectures: c.NumberOfLectures,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	for i := range c.Lectures {
		doc.Lectures = append(doc.Lectures, toLectureDocument(&c.Lectures[i]))
	}
	return doc
}

func toLectureDocument(l *course.Lecture) lectureDocument {
	return lectureDocument{
		ID:          l.ID.String(),
		Title:       l.Title,
		Description: l.Description,
		Media:       mediaDocument{PublicID: l.Media.PublicID, SecureURL: l.Media.SecureURL},
	}
}

func toCourseEntity(d *courseDocument) (*course.Course, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid course id %q: %w", d.ID, err)
	}
	c := &course.Course{
		ID:               id,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		CreatedBy:        d.CreatedBy,
		Thumbnail:        user.Media{PublicID: d.Thumbnail.PublicID, SecureURL: d.Thumbnail.SecureURL},
		NumberOfLectures: d.NumberOfLectures,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for i := range d.Lectures {
		l, err := toLectureEntity(&d.Lectures[i])
		if err != nil {
			return nil, err
		}
		c.Lectures = append(c.Lectures, l)
	}
	return c, nil
}

func toLectureEntity(d *lectureDocument) (course.Lecture, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return course.Lecture{}, fmt.Errorf("invalid lecture id %q: %w", d.ID, err)
	}
	return course.Lecture{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Media:       user.Media{PublicID: d.Media.PublicID, SecureURL: d.Media.SecureURL},
	}, nil
}
