package hr

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mohzhal/absensi/internal/pkg/response"
	authService "github.com/Mohzhal/absensi/internal/services/auth"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RosterImportHandler handles POST /api/hr/roster/import. HR can seed
// employee accounts in bulk, either from an uploaded .xlsx or from a
// Google Sheet URL. Expected columns: NIK | Nama | Password awal |
// company_id, with a header row. Imported accounts are pre-verified —
// they came from HR.
func RosterImportHandler(db *sql.DB, credsFile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows [][]string
		var err error

		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			var req struct {
				GoogleSheetURL string `json:"google_sheet_url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.RespondWithError(w, http.StatusBadRequest, "JSON tidak valid")
				return
			}
			if req.GoogleSheetURL == "" {
				response.RespondWithError(w, http.StatusBadRequest, "google_sheet_url wajib diisi")
				return
			}
			rows, err = readFromGoogleSheet(r.Context(), req.GoogleSheetURL, credsFile)
			if err != nil {
				response.RespondWithError(w, http.StatusInternalServerError, "Gagal membaca Google Sheets: "+err.Error())
				return
			}
		} else {
			file, _, err := r.FormFile("file")
			if err != nil {
				response.RespondWithError(w, http.StatusBadRequest, "File tidak ditemukan")
				return
			}
			defer file.Close()

			xlsx, err := excelize.OpenReader(file)
			if err != nil {
				response.RespondWithError(w, http.StatusBadRequest, "Format Excel tidak valid")
				return
			}
			rows, err = xlsx.GetRows("Sheet1")
			if err != nil {
				sheetList := xlsx.GetSheetList()
				if len(sheetList) == 0 {
					response.RespondWithError(w, http.StatusBadRequest, "File Excel kosong")
					return
				}
				rows, err = xlsx.GetRows(sheetList[0])
				if err != nil {
					response.RespondWithError(w, http.StatusInternalServerError, "Gagal membaca sheet")
					return
				}
			}
		}

		if len(rows) < 2 {
			response.RespondWithError(w, http.StatusBadRequest, "File harus berisi header dan minimal satu baris data")
			return
		}

		imported, err := importRoster(r.Context(), db, rows)
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		response.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"imported": imported,
		})
	}
}

type rosterEntry struct {
	nik, name, hash string
	companyID       int
}

// parseRoster turns raw sheet rows (header included) into insertable
// entries. Short or blank rows are skipped; a non-numeric company_id
// aborts the whole import so HR fixes the sheet instead of getting a
// partial roster.
func parseRoster(rows [][]string) ([]rosterEntry, error) {
	var entries []rosterEntry
	for i, row := range rows[1:] {
		if len(row) < 4 {
			continue
		}
		nik := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		password := strings.TrimSpace(row[2])
		companyStr := strings.TrimSpace(row[3])

		if nik == "" || name == "" || password == "" || companyStr == "" {
			continue
		}

		companyID, err := strconv.Atoi(companyStr)
		if err != nil {
			return nil, fmt.Errorf("baris %d: company_id tidak valid: %s", i+2, companyStr)
		}

		hash, err := authService.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("baris %d: gagal memproses password", i+2)
		}
		entries = append(entries, rosterEntry{nik: nik, name: name, hash: hash, companyID: companyID})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("tidak ada baris data yang valid")
	}
	return entries, nil
}

func importRoster(ctx context.Context, db *sql.DB, rows [][]string) (int, error) {
	entries, err := parseRoster(rows)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (nik, name, password_hash, role, company_id, is_verified)
			VALUES ($1, $2, $3, 'karyawan', $4, 1)
			ON CONFLICT (nik) DO NOTHING
		`, e.nik, e.name, e.hash, e.companyID)
		if err != nil {
			return 0, fmt.Errorf("gagal menyimpan NIK %s: %w", e.nik, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func readFromGoogleSheet(ctx context.Context, url, credsFile string) ([][]string, error) {
	re := regexp.MustCompile(`\/d\/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)
	if len(matches) < 2 {
		return nil, fmt.Errorf("URL Google Sheets tidak valid")
	}
	spreadsheetID := matches[1]

	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credsFile))
	if err != nil {
		return nil, fmt.Errorf("gagal inisialisasi Google API: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, "A1:D1000").Do()
	if err != nil {
		return nil, fmt.Errorf("gagal membaca spreadsheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("spreadsheet kosong")
	}

	var rows [][]string
	for _, row := range resp.Values {
		var strRow []string
		for _, cell := range row {
			strRow = append(strRow, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, strRow)
	}
	return rows, nil
}
