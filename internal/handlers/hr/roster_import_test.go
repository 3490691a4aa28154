package hr

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseRoster(t *testing.T) {
	header := []string{"NIK", "Nama", "Password", "company_id"}

	t.Run("valid rows", func(t *testing.T) {
		entries, err := parseRoster([][]string{
			header,
			{"1001", "Budi", "rahasia1", "1"},
			{"1002", "Siti", "rahasia2", "2"},
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "1001", entries[0].nik)
		assert.Equal(t, "Budi", entries[0].name)
		assert.Equal(t, 2, entries[1].companyID)
		assert.NotEqual(t, "rahasia1", entries[0].hash)
	})

	t.Run("short and blank rows are skipped", func(t *testing.T) {
		entries, err := parseRoster([][]string{
			header,
			{"1001", "Budi"},
			{"", "", "", ""},
			{"1002", "Siti", "rahasia2", "2"},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "1002", entries[0].nik)
	})

	t.Run("bad company_id names the row", func(t *testing.T) {
		_, err := parseRoster([][]string{
			header,
			{"1001", "Budi", "rahasia1", "1"},
			{"1002", "Siti", "rahasia2", "PT Contoh"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "baris 3")
		assert.Contains(t, err.Error(), "company_id tidak valid")
	})

	t.Run("header only", func(t *testing.T) {
		_, err := parseRoster([][]string{header})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tidak ada baris data")
	})
}

func TestRosterImportMissingSheetURL(t *testing.T) {
	h := RosterImportHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/hr/roster/import", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "google_sheet_url")
}

func TestRosterImportHeaderOnlySheet(t *testing.T) {
	xlsx := excelize.NewFile()
	require.NoError(t, xlsx.SetSheetRow("Sheet1", "A1", &[]string{"NIK", "Nama", "Password", "company_id"}))

	var fileBuf bytes.Buffer
	require.NoError(t, xlsx.Write(&fileBuf))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(fileBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/hr/roster/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	RosterImportHandler(nil, "").ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "minimal satu baris data")
}

func TestReadFromGoogleSheetRejectsBadURL(t *testing.T) {
	_, err := readFromGoogleSheet(context.Background(), "https://example.com/not-a-sheet", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL Google Sheets tidak valid")
}
