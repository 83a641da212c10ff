package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func customerActor(id uuid.UUID) Actor {
	return Actor{ID: id, Roles: []string{RoleCustomer}}
}

func employeeActor() Actor {
	return Actor{ID: uuid.New(), Roles: []string{RoleEmployee}}
}

func adminActor() Actor {
	return Actor{ID: uuid.New(), Roles: []string{RoleAdmin}}
}

func requestOwnedBy(ownerID uuid.UUID, scheduledAt *time.Time) *RepairRequest {
	return &RepairRequest{
		ID:          uuid.New(),
		BookingID:   "BR-20260901-ABCDEF",
		CustomerID:  ownerID,
		Status:      StatusPending,
		ScheduledAt: scheduledAt,
		Costs:       NewRepairCosts(5000),
	}
}

func TestCanPerform_CreateRequiresCustomerRole(t *testing.T) {
	now := time.Now()

	if d := CanPerform(customerActor(uuid.New()), nil, ActionCreate, now); !d.Allowed {
		t.Fatalf("expected customer to be allowed to create, denied with %s", d.Kind)
	}
	if d := CanPerform(employeeActor(), nil, ActionCreate, now); d.Allowed || d.Kind != DenyRoleNotPermitted {
		t.Fatalf("expected employee create denial RoleNotPermitted, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
	if d := CanPerform(adminActor(), nil, ActionCreate, now); d.Allowed {
		t.Fatalf("expected admin to be denied create")
	}
}

func TestCanPerform_ViewAllStaffOnly(t *testing.T) {
	now := time.Now()

	if d := CanPerform(employeeActor(), nil, ActionViewAll, now); !d.Allowed {
		t.Fatalf("expected employee viewAll allowed")
	}
	if d := CanPerform(adminActor(), nil, ActionViewAll, now); !d.Allowed {
		t.Fatalf("expected admin viewAll allowed")
	}
	if d := CanPerform(customerActor(uuid.New()), nil, ActionViewAll, now); d.Allowed || d.Kind != DenyRoleNotPermitted {
		t.Fatalf("expected customer viewAll denial RoleNotPermitted, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
}

func TestCanPerform_ViewOneOwnershipAndAssignment(t *testing.T) {
	now := time.Now()
	owner := uuid.New()
	req := requestOwnedBy(owner, nil)

	if d := CanPerform(customerActor(owner), req, ActionViewOne, now); !d.Allowed {
		t.Fatalf("expected owner to view own request")
	}
	if d := CanPerform(customerActor(uuid.New()), req, ActionViewOne, now); d.Allowed || d.Kind != DenyNotOwner {
		t.Fatalf("expected non-owner viewOne denial NotOwner, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
	if d := CanPerform(employeeActor(), req, ActionViewOne, now); !d.Allowed {
		t.Fatalf("expected staff to view any request")
	}

	tech := customerActor(uuid.New())
	req.AssignedTechnicianID = &tech.ID
	if d := CanPerform(tech, req, ActionViewOne, now); !d.Allowed {
		t.Fatalf("expected assigned technician to view the request")
	}
}

func TestCanPerform_StaffFieldActions(t *testing.T) {
	now := time.Now()
	req := requestOwnedBy(uuid.New(), nil)

	for _, action := range []Action{ActionUpdateStaffFields, ActionSendInvoice, ActionRecordPayment} {
		if d := CanPerform(employeeActor(), req, action, now); !d.Allowed {
			t.Fatalf("expected employee allowed for %s", action)
		}
		if d := CanPerform(adminActor(), req, action, now); !d.Allowed {
			t.Fatalf("expected admin allowed for %s", action)
		}
		if d := CanPerform(customerActor(req.CustomerID), req, action, now); d.Allowed || d.Kind != DenyRoleNotPermitted {
			t.Fatalf("expected owner denial RoleNotPermitted for %s, got allowed=%v kind=%s", action, d.Allowed, d.Kind)
		}
	}
}

func TestCanPerform_EditOwnFieldsWindow(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	scheduled := now.Add(48 * time.Hour)
	req := requestOwnedBy(owner, &scheduled)

	if d := CanPerform(customerActor(owner), req, ActionEditOwnFields, now); !d.Allowed {
		t.Fatalf("expected edit allowed before scheduled time")
	}
	if d := CanPerform(customerActor(owner), req, ActionEditOwnFields, scheduled); d.Allowed || d.Kind != DenyWindowExpired {
		t.Fatalf("expected edit denial WindowExpired at scheduled time, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
	if d := CanPerform(customerActor(uuid.New()), req, ActionEditOwnFields, now); d.Allowed || d.Kind != DenyNotOwner {
		t.Fatalf("expected non-owner edit denial NotOwner, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
	if d := CanPerform(employeeActor(), req, ActionEditOwnFields, now); d.Allowed || d.Kind != DenyRoleNotPermitted {
		t.Fatalf("expected staff edit denial RoleNotPermitted, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
}

func TestCanPerform_CancelOwnWindow(t *testing.T) {
	owner := uuid.New()
	now := time.Now()

	// 73 hours of notice: still allowed.
	scheduled := now.Add(73 * time.Hour)
	req := requestOwnedBy(owner, &scheduled)
	if d := CanPerform(customerActor(owner), req, ActionCancelOwn, now); !d.Allowed {
		t.Fatalf("expected cancel allowed 73h before appointment, denied with %s", d.Kind)
	}

	// Exactly at the 72h boundary: denied.
	scheduled = now.Add(72 * time.Hour)
	req = requestOwnedBy(owner, &scheduled)
	if d := CanPerform(customerActor(owner), req, ActionCancelOwn, now); d.Allowed || d.Kind != DenyWindowExpired {
		t.Fatalf("expected cancel denial WindowExpired at 72h boundary, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}

	// Unscheduled: unconditionally allowed.
	req = requestOwnedBy(owner, nil)
	if d := CanPerform(customerActor(owner), req, ActionCancelOwn, now); !d.Allowed {
		t.Fatalf("expected cancel allowed with no scheduled time")
	}

	if d := CanPerform(customerActor(uuid.New()), req, ActionCancelOwn, now); d.Allowed || d.Kind != DenyNotOwner {
		t.Fatalf("expected non-owner cancel denial NotOwner, got allowed=%v kind=%s", d.Allowed, d.Kind)
	}
}

func TestCanPerform_DeleteAnyAdminOnly(t *testing.T) {
	now := time.Now()
	req := requestOwnedBy(uuid.New(), nil)

	if d := CanPerform(adminActor(), req, ActionDeleteAny, now); !d.Allowed {
		t.Fatalf("expected admin deleteAny allowed")
	}
	if d := CanPerform(employeeActor(), req, ActionDeleteAny, now); d.Allowed {
		t.Fatalf("expected employee deleteAny denied")
	}
	if d := CanPerform(customerActor(req.CustomerID), req, ActionDeleteAny, now); d.Allowed {
		t.Fatalf("expected customer deleteAny denied")
	}
}
