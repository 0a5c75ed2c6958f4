package middleware

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/huangang/teamboard/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.ProjectMember{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// asUser injects an authenticated user into the context, standing in for
// AuthRequired in tests.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, id)
		c.Next()
	}
}

func seedMember(t *testing.T, db *gorm.DB, projectID, userID uint, perm models.ProjectPermission, status models.InvitationStatus) *models.ProjectMember {
	t.Helper()
	m := &models.ProjectMember{
		ProjectID:        projectID,
		UserID:           userID,
		Permission:       perm,
		InvitationStatus: status,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
	return m
}

func TestActorMembershipRequired(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, 1, 10, models.PermissionRoot, models.InvitationAccepted)

	var loaded *models.ProjectMember
	r := gin.New()
	r.GET("/projects/:projectId/views", asUser(10), ActorMembershipRequired(db), func(c *gin.Context) {
		loaded = GetActorMembership(c)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "GET", "/projects/1/views", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for member, got %d", w.Code)
	}
	if loaded == nil || loaded.UserID != 10 || loaded.ProjectID != 1 {
		t.Errorf("actor membership not loaded into context: %+v", loaded)
	}

	// Non-member gets 404 rather than 403.
	r2 := gin.New()
	r2.GET("/projects/:projectId/views", asUser(99), ActorMembershipRequired(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w = performRequest(r2, "GET", "/projects/1/views", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for non-member, got %d", w.Code)
	}
}

func TestActorMembershipRequired_BadProjectID(t *testing.T) {
	db := openTestDB(t)

	r := gin.New()
	r.GET("/projects/:projectId/views", asUser(10), ActorMembershipRequired(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "GET", "/projects/abc/views", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestInvitePrecheck_AcceptedBlocks(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, 1, 20, models.PermissionEdit, models.InvitationAccepted)

	r := gin.New()
	r.POST("/projects/:projectId/members/:userId/invite", asUser(10), InvitePrecheck(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "POST", "/projects/1/members/20/invite", "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for accepted member, got %d", w.Code)
	}
}

func TestInvitePrecheck_StaleRecordRemoved(t *testing.T) {
	tests := []struct {
		name   string
		status models.InvitationStatus
	}{
		{"pending", models.InvitationPending},
		{"rejected", models.InvitationRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			stale := seedMember(t, db, 1, 20, models.PermissionViewOnly, tt.status)

			r := gin.New()
			r.POST("/projects/:projectId/members/:userId/invite", asUser(10), InvitePrecheck(db), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := performRequest(r, "POST", "/projects/1/members/20/invite", "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var count int64
			db.Model(&models.ProjectMember{}).Where("id = ?", stale.ID).Count(&count)
			if count != 0 {
				t.Errorf("stale invitation was not removed")
			}
		})
	}
}

func TestInvitePrecheck_NoExistingRecord(t *testing.T) {
	db := openTestDB(t)

	r := gin.New()
	r.POST("/projects/:projectId/members/:userId/invite", asUser(10), InvitePrecheck(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "POST", "/projects/1/members/20/invite", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestMembershipExistsRequired(t *testing.T) {
	db := openTestDB(t)
	target := seedMember(t, db, 1, 20, models.PermissionEdit, models.InvitationAccepted)
	seedMember(t, db, 1, 10, models.PermissionRoot, models.InvitationAccepted)

	var gotTarget, gotActor *models.ProjectMember
	r := gin.New()
	r.DELETE("/memberships/:id", asUser(10), MembershipExistsRequired(db), func(c *gin.Context) {
		gotTarget = GetTargetMembership(c)
		gotActor = GetActorMembership(c)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "DELETE", "/memberships/"+itoa(target.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotTarget == nil || gotTarget.ID != target.ID {
		t.Errorf("target membership not loaded: %+v", gotTarget)
	}
	if gotActor == nil || gotActor.UserID != 10 {
		t.Errorf("actor membership not loaded: %+v", gotActor)
	}
}

func TestMembershipExistsRequired_MissingTarget(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, 1, 10, models.PermissionRoot, models.InvitationAccepted)

	r := gin.New()
	r.DELETE("/memberships/:id", asUser(10), MembershipExistsRequired(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "DELETE", "/memberships/999", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestMembershipExistsRequired_ActorNotOnProject(t *testing.T) {
	db := openTestDB(t)
	target := seedMember(t, db, 1, 20, models.PermissionEdit, models.InvitationAccepted)

	r := gin.New()
	r.DELETE("/memberships/:id", asUser(10), MembershipExistsRequired(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "DELETE", "/memberships/"+itoa(target.ID), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestWriteAccessRequired(t *testing.T) {
	tests := []struct {
		name       string
		permission models.ProjectPermission
		want       int
	}{
		{"root can write", models.PermissionRoot, http.StatusOK},
		{"edit can write", models.PermissionEdit, http.StatusOK},
		{"view-only refused", models.PermissionViewOnly, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/items", func(c *gin.Context) {
				c.Set(ContextActorMembership, &models.ProjectMember{Permission: tt.permission})
			}, WriteAccessRequired(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := performRequest(r, "POST", "/items", "")
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestWriteAccessRequired_NoMembership(t *testing.T) {
	r := gin.New()
	r.POST("/items", WriteAccessRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, "POST", "/items", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
