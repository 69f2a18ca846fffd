package handler

import (
	"github.com/gorilla/mux"
)

func NewRouter(studentHandler *StudentHandler, uploadHandler *UploadHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", Index).Methods("GET")
	r.HandleFunc("/calculate_cgpa", studentHandler.CalculateCGPA).Methods("POST")
	r.HandleFunc("/healthz", studentHandler.Health).Methods("GET")

	// export is registered before the {rollKey} route so it is not shadowed
	r.HandleFunc("/students/export", uploadHandler.ExportStudents).Methods("GET")
	r.HandleFunc("/students/import", uploadHandler.ImportStudents).Methods("POST")
	r.HandleFunc("/students", studentHandler.ListStudents).Methods("GET")
	r.HandleFunc("/students/{rollKey}", studentHandler.GetStudent).Methods("GET")

	return r
}
