package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BNU SCIT Registrar API",
        "description": "Course scheduling, enrollment and gradebook service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and credential management"},
        {"name": "Availability", "description": "Free faculty, rooms and unscheduled courses per timeslot"},
        {"name": "Schedules", "description": "Course-faculty-room-timeslot assignments"},
        {"name": "Enrollments", "description": "Student seats in scheduled sections"},
        {"name": "Catalog", "description": "Sections available for enrollment"},
        {"name": "Marks", "description": "Assignment gradebook"},
        {"name": "Exports", "description": "Roster and timetable downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a principal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/availability/faculty": {
            "get": {
                "tags": ["Availability"],
                "summary": "List faculty free in a timeslot",
                "parameters": [
                    {"name": "timeslot_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/rooms": {
            "get": {
                "tags": ["Availability"],
                "summary": "List classrooms free in a timeslot",
                "parameters": [
                    {"name": "timeslot_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/courses": {
            "get": {
                "tags": ["Availability"],
                "summary": "List courses without a schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule assignments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Assign a course to faculty, room and timeslot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignment conflicts with an existing schedule"}
                }
            }
        },
        "/schedules/{id}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Remove a schedule and its enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Schedule not found"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a scheduled section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled, timeslot clash or section full"}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Withdraw from a scheduled section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not enrolled"}
                }
            }
        },
        "/catalog/sections": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Scheduled sections available for enrollment",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "degree", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks": {
            "put": {
                "tags": ["Marks"],
                "summary": "Record an assignment score",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMarkRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/exports/courses/{code}/roster": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the roster for a course",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "principal": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "FACULTY", "STUDENT"]}
            },
            "required": ["principal", "password", "role"]
        },
        "AssignScheduleRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "faculty_id": {"type": "integer"},
                "timeslot_id": {"type": "integer"},
                "room_id": {"type": "string"}
            },
            "required": ["course_code", "faculty_id", "timeslot_id", "room_id"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "schedule_id": {"type": "integer"}
            },
            "required": ["schedule_id"]
        },
        "RecordMarkRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "student_id": {"type": "string"},
                "assignment_name": {"type": "string"},
                "total_marks": {"type": "integer"},
                "obtained_marks": {"type": "integer"}
            },
            "required": ["course_code", "student_id", "assignment_name", "total_marks"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
