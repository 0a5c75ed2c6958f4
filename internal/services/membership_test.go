package services

import (
	"testing"

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
	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.StatusView{},
		&models.ViewItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, AuthType: "local", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		current models.InvitationStatus
		next    models.InvitationStatus
		wantErr error
	}{
		{"pending can accept", models.InvitationPending, models.InvitationAccepted, nil},
		{"pending can reject", models.InvitationPending, models.InvitationRejected, nil},
		{"cannot answer with pending", models.InvitationPending, models.InvitationPending, ErrInvalidStatus},
		{"unknown status refused", models.InvitationPending, "maybe", ErrInvalidStatus},
		{"accepted stays accepted", models.InvitationAccepted, models.InvitationAccepted, ErrAlreadyMember},
		{"accepted cannot reject", models.InvitationAccepted, models.InvitationRejected, ErrAlreadyMember},
		{"rejected cannot accept", models.InvitationRejected, models.InvitationAccepted, ErrInvitationRejected},
		{"rejected cannot reject again", models.InvitationRejected, models.InvitationRejected, ErrInvitationRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.current, tt.next)
			if err != tt.wantErr {
				t.Errorf("ValidateResponse(%q, %q) = %v, expected %v", tt.current, tt.next, err, tt.wantErr)
			}
		})
	}
}

func TestCanInvite(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.ProjectMember
		want  bool
	}{
		{"nil actor", nil, false},
		{"root", &models.ProjectMember{Permission: models.PermissionRoot}, true},
		{"edit", &models.ProjectMember{Permission: models.PermissionEdit}, false},
		{"view-only", &models.ProjectMember{Permission: models.PermissionViewOnly}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanInvite(tt.actor); got != tt.want {
				t.Errorf("CanInvite() = %v, expected %v", got, tt.want)
			}
			if got := CanChangePermission(tt.actor); got != tt.want {
				t.Errorf("CanChangePermission() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestCanRemove(t *testing.T) {
	root := &models.ProjectMember{UserID: 1, Permission: models.PermissionRoot}
	editor := &models.ProjectMember{UserID: 2, Permission: models.PermissionEdit}
	viewer := &models.ProjectMember{UserID: 3, Permission: models.PermissionViewOnly}

	tests := []struct {
		name   string
		actor  *models.ProjectMember
		target *models.ProjectMember
		want   bool
	}{
		{"root removes anyone", root, editor, true},
		{"root removes self", root, root, true},
		{"editor removes self", editor, editor, true},
		{"editor cannot remove others", editor, viewer, false},
		{"viewer removes self", viewer, viewer, true},
		{"viewer cannot remove others", viewer, root, false},
		{"nil actor", nil, editor, false},
		{"nil target", root, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRemove(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanRemove() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestMembershipService_InviteDefaultsToViewOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	owner := createUser(t, db, "owner")
	invitee := createUser(t, db, "invitee")

	member, err := svc.Invite(1, owner.ID, invitee.ID, "")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if member.Permission != models.PermissionViewOnly {
		t.Errorf("Permission = %q, expected view-only", member.Permission)
	}
	if member.InvitationStatus != models.InvitationPending {
		t.Errorf("InvitationStatus = %q, expected pending", member.InvitationStatus)
	}
	if member.InvitedByID != owner.ID {
		t.Errorf("InvitedByID = %d, expected %d", member.InvitedByID, owner.ID)
	}
}

func TestMembershipService_InviteUnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)

	_, err := svc.Invite(1, 1, 999, models.PermissionEdit)
	if err == nil {
		t.Fatal("expected error inviting unknown user")
	}
}

func TestMembershipService_InviteInvalidPermission(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	invitee := createUser(t, db, "invitee")

	_, err := svc.Invite(1, 1, invitee.ID, "admin")
	if err != ErrInvalidPermission {
		t.Errorf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestMembershipService_Respond(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	owner := createUser(t, db, "owner")
	invitee := createUser(t, db, "invitee")

	member, err := svc.Invite(1, owner.ID, invitee.ID, models.PermissionEdit)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	// Someone else cannot answer the invitation.
	if _, err := svc.Respond(member.ID, owner.ID, models.InvitationAccepted); err != ErrNotInvited {
		t.Errorf("expected ErrNotInvited for wrong user, got %v", err)
	}

	updated, err := svc.Respond(member.ID, invitee.ID, models.InvitationAccepted)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if updated.InvitationStatus != models.InvitationAccepted {
		t.Errorf("InvitationStatus = %q, expected accepted", updated.InvitationStatus)
	}

	// Answering twice reports the member already joined.
	if _, err := svc.Respond(member.ID, invitee.ID, models.InvitationRejected); err != ErrAlreadyMember {
		t.Errorf("expected ErrAlreadyMember on second answer, got %v", err)
	}
}

func TestMembershipService_RespondAfterReject(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	owner := createUser(t, db, "owner")
	invitee := createUser(t, db, "invitee")

	member, err := svc.Invite(1, owner.ID, invitee.ID, "")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if _, err := svc.Respond(member.ID, invitee.ID, models.InvitationRejected); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if _, err := svc.Respond(member.ID, invitee.ID, models.InvitationAccepted); err != ErrInvitationRejected {
		t.Errorf("expected ErrInvitationRejected, got %v", err)
	}
}

func TestMembershipService_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	memberSvc := NewMembershipService(db)
	projectSvc := NewProjectService(db)

	owner := createUser(t, db, "owner")
	invitee := createUser(t, db, "invitee")

	project, err := projectSvc.Create(&CreateProjectRequest{Name: "Roadmap"}, owner.ID)
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	// Creating a project bootstraps an accepted root membership.
	var ownerMember models.ProjectMember
	err = db.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&ownerMember).Error
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if ownerMember.Permission != models.PermissionRoot {
		t.Errorf("owner Permission = %q, expected root", ownerMember.Permission)
	}
	if ownerMember.InvitationStatus != models.InvitationAccepted {
		t.Errorf("owner InvitationStatus = %q, expected accepted", ownerMember.InvitationStatus)
	}

	// Invite, accept, promote, then leave.
	invited, err := memberSvc.Invite(project.ID, owner.ID, invitee.ID, "")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	// The pending member does not see the project yet.
	list, err := projectSvc.List(invitee.ID, &ProjectListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("pending member should see 0 projects, got %d", list.Total)
	}

	if _, err := memberSvc.Respond(invited.ID, invitee.ID, models.InvitationAccepted); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	list, err = projectSvc.List(invitee.ID, &ProjectListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("accepted member should see 1 project, got %d", list.Total)
	}

	if err := memberSvc.UpdatePermission(invited, models.PermissionEdit); err != nil {
		t.Fatalf("UpdatePermission failed: %v", err)
	}
	var reloaded models.ProjectMember
	if err := db.First(&reloaded, invited.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Permission != models.PermissionEdit {
		t.Errorf("Permission = %q, expected edit", reloaded.Permission)
	}

	if err := memberSvc.Remove(invited); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	var count int64
	db.Model(&models.ProjectMember{}).Where("id = ?", invited.ID).Count(&count)
	if count != 0 {
		t.Error("membership should be removed")
	}
}

func TestMembershipService_ListStripsUserID(t *testing.T) {
	db := openTestDB(t)
	memberSvc := NewMembershipService(db)
	projectSvc := NewProjectService(db)
	owner := createUser(t, db, "owner")

	if _, err := projectSvc.Create(&CreateProjectRequest{Name: "Board"}, owner.ID); err != nil {
		t.Fatalf("Create project failed: %v", err)
	}

	resp, err := memberSvc.List(owner.ID, &MembershipListRequest{WithCount: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Total = %d, expected 1", resp.Total)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("len(Items) = %d, expected 1", len(resp.Items))
	}
	if resp.Items[0].UserID != 0 {
		t.Errorf("UserID should be cleared in list output, got %d", resp.Items[0].UserID)
	}
	if resp.Items[0].Project == nil || resp.Items[0].Project.Name != "Board" {
		t.Error("Project should be populated in list output")
	}
}

func TestMembershipService_ListFiltersByStatus(t *testing.T) {
	db := openTestDB(t)
	memberSvc := NewMembershipService(db)
	projectSvc := NewProjectService(db)
	owner := createUser(t, db, "owner")
	invitee := createUser(t, db, "invitee")

	project, err := projectSvc.Create(&CreateProjectRequest{Name: "Board"}, owner.ID)
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}
	if _, err := memberSvc.Invite(project.ID, owner.ID, invitee.ID, ""); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	resp, err := memberSvc.List(invitee.ID, &MembershipListRequest{
		Status: string(models.InvitationPending), WithCount: true,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 {
		t.Fatalf("pending filter: Total = %d, len(Items) = %d, expected 1/1", resp.Total, len(resp.Items))
	}

	resp, err = memberSvc.List(invitee.ID, &MembershipListRequest{
		Status: string(models.InvitationAccepted), WithCount: true,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 0 || len(resp.Items) != 0 {
		t.Errorf("accepted filter: Total = %d, len(Items) = %d, expected 0/0", resp.Total, len(resp.Items))
	}
}
