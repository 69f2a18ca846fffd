package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func multipartRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/students/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportThenExport(t *testing.T) {
	r := setupRouter(t, setupTestStore(t))

	csvData := []byte("name,roll,number,semester,sgpa1,credit1,sgpa2,credit2\n" +
		"Ravi,21CS043,9000000001,3,8.5,20,9.1,24\n" +
		"Meera,21CS044,9000000002,3,7,4,8,4\n")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "students.csv", csvData))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, map[string]int{"imported": 2, "skipped": 0, "failed": 0}, result)

	// Importing the same file again skips every row.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "students.csv", csvData))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, 2, result["skipped"])

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/students/export", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "students.xlsx")

	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ravi", rows[1][1])
	assert.Equal(t, "Meera", rows[2][1])
}

func TestImportRejectsBadUploads(t *testing.T) {
	r := setupRouter(t, setupTestStore(t))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "students.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewReader(make([]byte, 2<<20)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
