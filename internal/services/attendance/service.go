package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/redis/go-redis/v9"
)

const companyCacheTTL = 5 * time.Minute

// CompanyStore is the slice of the company repository the service needs.
type CompanyStore interface {
	GetByID(ctx context.Context, id int) (*models.Company, error)
}

// RecordStore persists accepted submissions.
type RecordStore interface {
	Save(ctx context.Context, a *models.Attendance) error
}

// Publisher receives every accepted record (the HR live feed).
type Publisher interface {
	PublishAttendance(ctx context.Context, record *models.Attendance)
}

type Service struct {
	companies CompanyStore
	records   RecordStore
	publisher Publisher
	redis     *redis.Client
	uploadDir string
}

func NewService(companies CompanyStore, records RecordStore, publisher Publisher, redisClient *redis.Client, uploadDir string) *Service {
	return &Service{
		companies: companies,
		records:   records,
		publisher: publisher,
		redis:     redisClient,
		uploadDir: uploadDir,
	}
}

// Submission is one capture attempt as received from the client: the photo
// bytes plus the coordinate read at submission time.
type Submission struct {
	User     *models.User
	Type     models.AttendanceType
	Photo    []byte
	Location geo.Coordinate
}

// Submit is the authoritative adjudication. The record is stored whether or
// not it lands inside the geofence — an out-of-range attempt is a fact HR
// wants to see, not an error — and the persisted distance/validity is what
// every client must display, never its own computation.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*models.AttendanceResult, error) {
	company, err := s.company(ctx, sub.User.CompanyID)
	if err != nil {
		return nil, err
	}
	companyLoc := geo.Coordinate{Lat: company.Latitude, Lon: company.Longitude}

	var distM int
	var isValid bool
	coordsOK := sub.Location.Valid() && companyLoc.Valid()
	if coordsOK {
		dist := geo.HaversineMeters(sub.Location, companyLoc)
		distM = geo.DistanceMeters(sub.Location, companyLoc)
		isValid = geo.WithinRadius(dist, company.ValidRadiusM)
	}

	photoURL, err := s.savePhoto(sub)
	if err != nil {
		log.Printf("Failed to store attendance photo: %v", err)
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	record := &models.Attendance{
		UserID:    sub.User.ID,
		CompanyID: company.ID,
		Type:      sub.Type,
		PhotoURL:  photoURL,
		Latitude:  sub.Location.Lat,
		Longitude: sub.Location.Lon,
		DistanceM: distM,
		IsValid:   isValid,
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishAttendance(ctx, record)
	}

	return &models.AttendanceResult{
		DistanceM:       distM,
		IsValid:         isValid,
		Location:        sub.Location,
		CompanyLocation: companyLoc,
		Msg:             resultMsg(sub.Type, distM, isValid, coordsOK),
		Record:          record,
	}, nil
}

func resultMsg(typ models.AttendanceType, distM int, isValid, coordsOK bool) string {
	label := "Check-in"
	if typ == models.CheckOut {
		label = "Check-out"
	}
	switch {
	case !coordsOK:
		return fmt.Sprintf("%s tercatat, tetapi koordinat lokasi tidak valid", label)
	case isValid:
		return fmt.Sprintf("%s berhasil. Jarak Anda %d meter dari kantor", label, distM)
	default:
		return fmt.Sprintf("%s tercatat, tetapi Anda berada di luar jangkauan kantor (%d meter)", label, distM)
	}
}

// company resolves the company row through a short-lived redis cache; the
// registered coordinate changes rarely but every submission needs it.
func (s *Service) company(ctx context.Context, id int) (*models.Company, error) {
	key := "company:" + strconv.Itoa(id)

	if s.redis != nil {
		if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var c models.Company
			if err := json.Unmarshal(data, &c); err == nil {
				return &c, nil
			}
		}
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(company); err == nil {
			if err := s.redis.Set(ctx, key, data, companyCacheTTL).Err(); err != nil {
				log.Printf("Redis company cache warning: %v", err)
			}
		}
	}
	return company, nil
}

// InvalidateCompany drops the cached row after an admin edit.
func (s *Service) InvalidateCompany(ctx context.Context, id int) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, "company:"+strconv.Itoa(id)).Err(); err != nil {
		log.Printf("Redis company invalidate warning: %v", err)
	}
}

func (s *Service) savePhoto(sub *Submission) (string, error) {
	dir := filepath.Join(s.uploadDir, "attendance")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("absensi-%s-%d-%d.jpg", sub.Type, sub.User.ID, time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(dir, name), sub.Photo, 0o644); err != nil {
		return "", err
	}
	return "/uploads/attendance/" + name, nil
}
