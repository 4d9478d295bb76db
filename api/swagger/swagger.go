package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Ortografia API",
        "description": "Backend for the spelling practice platform: classrooms, enrollments, guardians, word bank and progress tracking.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Classrooms", "description": "Classroom management"},
        {"name": "Enrollments", "description": "Student enrollment lifecycle"},
        {"name": "Guardians", "description": "Guardian to student links"},
        {"name": "Words", "description": "Word bank for the games"},
        {"name": "Progress", "description": "Game sessions and progress reports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain a token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List the teacher's classrooms",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Classrooms"],
                "summary": "Create a classroom",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassroomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate year and section"}
                }
            }
        },
        "/classrooms/available": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List active classrooms open for enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{classroomId}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Get one of the teacher's classrooms",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classroomId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Classrooms"],
                "summary": "Update a classroom",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classroomId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClassroomRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{classroomId}/students": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List the classroom roster with game stats",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classroomId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into one of the teacher's classrooms",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student already enrolled or classroom full"}
                }
            }
        },
        "/enrollments/self": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Join a classroom as the calling student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelfEnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled or classroom full"}
                }
            }
        },
        "/enrollments/status": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Return the calling student's enrollment status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/history": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Return the calling student's enrollment history",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/transfer": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Transfer a student into one of the teacher's classrooms",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransferStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Same classroom or target full"}
                }
            }
        },
        "/enrollments/students/{studentId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove a student from the teacher's classroom",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/UnenrollRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "No active enrollment"}
                }
            }
        },
        "/students/search": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Find a student by email with their current enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "email", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found"},
                    "409": {"description": "Student already enrolled in one of the caller's classrooms"}
                }
            }
        },
        "/users/search-parent": {
            "post": {
                "tags": ["Guardians"],
                "summary": "Search guardians by exact email or partial name",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SearchGuardiansRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No guardians match"}
                }
            }
        },
        "/students/{studentId}/guardians": {
            "get": {
                "tags": ["Guardians"],
                "summary": "List a student's guardians",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not allowed for this student"}
                }
            }
        },
        "/guardians/children": {
            "get": {
                "tags": ["Guardians"],
                "summary": "List the calling guardian's linked students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Guardians"],
                "summary": "Link the calling guardian to a student by email",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LinkChildRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already linked or guardian limit reached"}
                }
            }
        },
        "/guardians/links/{id}": {
            "patch": {
                "tags": ["Guardians"],
                "summary": "Update a guardian link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGuardianLinkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Guardians"],
                "summary": "Remove a guardian link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/words": {
            "get": {
                "tags": ["Words"],
                "summary": "List the teacher's word catalog",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "difficulty", "in": "query", "type": "integer"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Words"],
                "summary": "Add a word to the bank",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Word already exists"}
                }
            }
        },
        "/words/game": {
            "get": {
                "tags": ["Words"],
                "summary": "Fetch a randomised word set for the student's games",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "difficulty", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/words/stats": {
            "get": {
                "tags": ["Words"],
                "summary": "Summarise the teacher's word bank",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/words/{id}": {
            "patch": {
                "tags": ["Words"],
                "summary": "Update a word",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Words"],
                "summary": "Hide a word from the games",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/progress/sessions": {
            "post": {
                "tags": ["Progress"],
                "summary": "Record a finished game session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/me": {
            "get": {
                "tags": ["Progress"],
                "summary": "Return the calling user's sessions and stats",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/students/{studentId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Return a student's sessions and stats",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not allowed for this student"}
                }
            }
        },
        "/progress/classrooms/{classroomId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Return per-student progress for a classroom",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classroomId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/classrooms/{classroomId}/export": {
            "get": {
                "tags": ["Progress"],
                "summary": "Download the classroom progress report as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "classroomId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Progress"],
                "summary": "Return the teacher dashboard",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["TEACHER", "GUARDIAN", "STUDENT"]}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateClassroomRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade_level": {"type": "string"},
                "section": {"type": "string"},
                "school_year": {"type": "string"},
                "max_students": {"type": "integer", "minimum": 1, "maximum": 200}
            },
            "required": ["name", "grade_level", "section", "school_year"]
        },
        "UpdateClassroomRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade_level": {"type": "string"},
                "section": {"type": "string"},
                "school_year": {"type": "string"},
                "max_students": {"type": "integer", "minimum": 1, "maximum": 200},
                "active": {"type": "boolean"}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "properties": {
                "classroom_id": {"type": "string"},
                "student_email": {"type": "string"}
            },
            "required": ["classroom_id", "student_email"]
        },
        "SelfEnrollRequest": {
            "type": "object",
            "properties": {
                "classroom_id": {"type": "string"}
            },
            "required": ["classroom_id"]
        },
        "TransferStudentRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "to_classroom_id": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["student_id", "to_classroom_id"]
        },
        "UnenrollRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "SearchGuardiansRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "LinkChildRequest": {
            "type": "object",
            "properties": {
                "student_email": {"type": "string"},
                "relationship_type": {"type": "string", "enum": ["padre", "madre", "representante", "tutor", "abuelo", "abuela", "tio", "tia", "otro"]},
                "phone": {"type": "string"},
                "emergency_contact": {"type": "boolean"}
            },
            "required": ["student_email", "relationship_type"]
        },
        "UpdateGuardianLinkRequest": {
            "type": "object",
            "properties": {
                "relationship_type": {"type": "string"},
                "is_primary": {"type": "boolean"},
                "phone": {"type": "string"},
                "can_view_progress": {"type": "boolean"},
                "can_receive_notifications": {"type": "boolean"},
                "emergency_contact": {"type": "boolean"}
            }
        },
        "CreateWordRequest": {
            "type": "object",
            "properties": {
                "word": {"type": "string"},
                "hint": {"type": "string"},
                "category": {"type": "string"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 3},
                "classroom_id": {"type": "string"},
                "is_global": {"type": "boolean"}
            },
            "required": ["word", "hint"]
        },
        "UpdateWordRequest": {
            "type": "object",
            "properties": {
                "word": {"type": "string"},
                "hint": {"type": "string"},
                "category": {"type": "string"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 3},
                "is_active": {"type": "boolean"},
                "is_global": {"type": "boolean"}
            }
        },
        "RecordSessionRequest": {
            "type": "object",
            "properties": {
                "game_type": {"type": "string", "enum": ["ortografia", "reglas", "ahorcado", "titanic"]},
                "score": {"type": "integer"},
                "total_questions": {"type": "integer"},
                "correct_answers": {"type": "integer"},
                "incorrect_answers": {"type": "integer"},
                "time_spent": {"type": "integer"},
                "completed": {"type": "boolean"},
                "session_data": {"type": "object"}
            },
            "required": ["game_type"]
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
