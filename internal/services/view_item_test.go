package services

import (
	"testing"

	"github.com/huangang/teamboard/backend/internal/models"
)

func newBoard(t *testing.T) (*ViewItemService, *StatusViewService, *models.Project, *models.StatusView, *models.User) {
	t.Helper()
	db := openTestDB(t)
	owner := createUser(t, db, "owner")
	project, err := NewProjectService(db).Create(&CreateProjectRequest{Name: "Board"}, owner.ID)
	if err != nil {
		t.Fatalf("Create project failed: %v", err)
	}
	viewSvc := NewStatusViewService(db)
	view, err := viewSvc.Create(project.ID, owner.ID, &CreateStatusViewRequest{Name: "Todo", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("Create view failed: %v", err)
	}
	return NewViewItemService(db), viewSvc, project, view, owner
}

func TestViewItemService_CreateDefaultsPriority(t *testing.T) {
	itemSvc, _, project, view, owner := newBoard(t)

	item, err := itemSvc.Create(project.ID, owner.ID, &CreateViewItemRequest{
		Title:        "Write docs",
		StatusViewID: view.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.Priority != models.PriorityDefault {
		t.Errorf("Priority = %q, expected default", item.Priority)
	}
	if item.ProjectID != project.ID {
		t.Errorf("ProjectID = %d, expected %d", item.ProjectID, project.ID)
	}
}

func TestViewItemService_CreateInvalidPriority(t *testing.T) {
	itemSvc, _, project, view, owner := newBoard(t)

	_, err := itemSvc.Create(project.ID, owner.ID, &CreateViewItemRequest{
		Title:        "Task",
		StatusViewID: view.ID,
		Priority:     "urgent",
	})
	if err != ErrInvalidPriority {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestViewItemService_CreateViewFromOtherProject(t *testing.T) {
	itemSvc, _, project, view, owner := newBoard(t)

	_, err := itemSvc.Create(project.ID+1, owner.ID, &CreateViewItemRequest{
		Title:        "Task",
		StatusViewID: view.ID,
	})
	if err == nil {
		t.Error("expected error creating item against a foreign project's view")
	}
}

func TestViewItemService_MoveBetweenViews(t *testing.T) {
	itemSvc, viewSvc, project, view, owner := newBoard(t)

	done, err := viewSvc.Create(project.ID, owner.ID, &CreateStatusViewRequest{Name: "Done"})
	if err != nil {
		t.Fatalf("Create view failed: %v", err)
	}
	item, err := itemSvc.Create(project.ID, owner.ID, &CreateViewItemRequest{
		Title:        "Task",
		StatusViewID: view.ID,
		Priority:     models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := itemSvc.Update(project.ID, item.ID, &UpdateViewItemRequest{StatusViewID: &done.ID})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	filtered, err := itemSvc.List(project.ID, &ViewItemListRequest{StatusViewID: &done.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != updated.ID {
		t.Errorf("moved item not found in target view")
	}
}

func TestStatusViewService_DeleteRemovesItems(t *testing.T) {
	itemSvc, viewSvc, project, view, owner := newBoard(t)

	if _, err := itemSvc.Create(project.ID, owner.ID, &CreateViewItemRequest{Title: "Task", StatusViewID: view.ID}); err != nil {
		t.Fatalf("Create item failed: %v", err)
	}

	if err := viewSvc.Delete(project.ID, view.ID); err != nil {
		t.Fatalf("Delete view failed: %v", err)
	}

	items, err := itemSvc.List(project.ID, &ViewItemListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("deleting a view should remove its items, %d left", len(items))
	}
}
