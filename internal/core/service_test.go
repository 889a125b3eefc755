package core_test

import (
	"context"
	"errors"
	"testing"

	"dircore/internal/core"
	"dircore/pkg/domain"
	"dircore/pkg/providerapi"
	"dircore/providers/pibling"
)

func suffix() domain.DN { return domain.MustParseDN("dc=example,dc=com") }

func newService(t *testing.T) *core.Service {
	t.Helper()
	return core.NewInMemoryService(suffix(), core.NewDefaultRulesEngine())
}

func mustAdd(t *testing.T, svc *core.Service, dn string, attrs map[string][]string) domain.Entry {
	t.Helper()
	e := domain.Entry{DN: domain.MustParseDN(dn)}
	for name, values := range attrs {
		e.PutAttribute(name, values...)
	}
	created, res, err := svc.AddEntry(context.Background(), e)
	if err != nil {
		t.Fatalf("add %s: %v", dn, err)
	}
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityBlock {
			t.Fatalf("add %s blocked: %+v", dn, v)
		}
	}
	return created
}

func seedDepartment(t *testing.T, svc *core.Service) {
	t.Helper()
	mustAdd(t, svc, "dc=example,dc=com", map[string][]string{"objectClass": {"domain"}})
	mustAdd(t, svc, "ou=people,dc=example,dc=com", map[string][]string{"objectClass": {"organizationalUnit"}})
	mustAdd(t, svc, "cn=alice,ou=people,dc=example,dc=com", map[string][]string{
		"objectClass":     {"person"},
		"telephoneNumber": {"555-1111"},
	})
	mustAdd(t, svc, "cn=bob,ou=people,dc=example,dc=com", map[string][]string{
		"objectClass":     {"person"},
		"telephoneNumber": {"555-2222", "555-1111"},
	})
}

func piblingSettings() providerapi.Settings {
	return providerapi.Settings{
		pibling.ArgSourceAttribute:   "telephoneNumber",
		pibling.ArgSourceObjectClass: "person",
	}
}

func TestParentExistsRuleBlocksOrphanAdds(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, "dc=example,dc=com", map[string][]string{"objectClass": {"domain"}})

	_, res, err := svc.AddEntry(context.Background(), domain.Entry{
		DN: domain.MustParseDN("cn=orphan,ou=missing,dc=example,dc=com"),
	})
	if err == nil {
		t.Fatalf("expected blocking violation")
	}
	var verr domain.RuleViolationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T: %v", err, err)
	}
	if !res.HasBlocking() {
		t.Fatalf("result should carry the blocking violation: %+v", res)
	}
}

func TestAttributeSyntaxRuleWarnsWithoutBlocking(t *testing.T) {
	svc := newService(t)
	mustAdd(t, svc, "dc=example,dc=com", map[string][]string{"objectClass": {"domain"}})

	e := domain.Entry{DN: domain.MustParseDN("ou=odd,dc=example,dc=com")}
	e.PutAttribute("bad name", "value")
	_, res, err := svc.AddEntry(context.Background(), e)
	if err != nil {
		t.Fatalf("warn-level violations must not block: %v", err)
	}
	var warned bool
	for _, v := range res.Violations {
		if v.Rule == "attribute_syntax" && v.Severity == domain.SeverityWarn {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected attribute_syntax warning, got %+v", res.Violations)
	}
}

func TestInstallProviderValidatesAttributeAndSettings(t *testing.T) {
	svc := newService(t)

	if _, err := svc.InstallProvider("9bad", pibling.New(), piblingSettings()); err == nil {
		t.Fatalf("invalid attribute name should be rejected")
	}
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), providerapi.Settings{}); err == nil {
		t.Fatalf("missing settings should be rejected")
	}

	meta, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings())
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if meta.Name != "pibling" || meta.Attribute != "departmentPhones" {
		t.Fatalf("metadata = %+v", meta)
	}

	if _, err := svc.InstallProvider("DEPARTMENTPHONES", pibling.New(), piblingSettings()); err == nil {
		t.Fatalf("attribute names must be claimed case-insensitively")
	}
}

func TestGenerateVirtualEndToEnd(t *testing.T) {
	svc := newService(t)
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}

	entry, _ := svc.GetEntry(domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com"))
	attr := svc.GenerateVirtual(context.Background(), entry, "departmentPhones")
	if attr == nil {
		t.Fatalf("expected generated attribute")
	}
	if len(attr.Values) != 2 || attr.Values[0] != "555-1111" || attr.Values[1] != "555-2222" {
		t.Fatalf("values = %v", attr.Values)
	}

	// The suffix entry has no parent within the tree.
	root, _ := svc.GetEntry(suffix())
	if svc.GenerateVirtual(context.Background(), root, "departmentPhones") != nil {
		t.Fatalf("root entry must not receive the attribute")
	}

	// Unserved attributes generate nothing.
	if svc.GenerateVirtual(context.Background(), entry, "unservedAttr") != nil {
		t.Fatalf("unserved attribute must yield nil")
	}
}

func TestWithVirtualMergesWithoutOverridingStored(t *testing.T) {
	svc := newService(t)
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}
	mustAdd(t, svc, "cn=carol,ou=people,dc=example,dc=com", map[string][]string{
		"objectClass":      {"person"},
		"departmentPhones": {"stored-value"},
	})

	alice, _ := svc.GetEntry(domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com"))
	merged := svc.WithVirtual(context.Background(), alice)
	if !merged.HasAttribute("departmentPhones") {
		t.Fatalf("virtual attribute missing from merged entry")
	}

	carol, _ := svc.GetEntry(domain.MustParseDN("cn=carol,ou=people,dc=example,dc=com"))
	merged = svc.WithVirtual(context.Background(), carol)
	if got := merged.GetValues("departmentPhones"); len(got) != 1 || got[0] != "stored-value" {
		t.Fatalf("stored attribute must win over generated: %v", got)
	}
}

func TestReloadProviderKeepsPreviousSettingsOnRejection(t *testing.T) {
	svc := newService(t)
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}

	if err := svc.ReloadProvider("departmentPhones", providerapi.Settings{
		pibling.ArgSourceAttribute: "mail",
	}); err == nil {
		t.Fatalf("incomplete settings should be rejected")
	}

	entry, _ := svc.GetEntry(domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com"))
	if svc.GenerateVirtual(context.Background(), entry, "departmentPhones") == nil {
		t.Fatalf("previous configuration should remain active after rejected reload")
	}
}

func TestReconfigureIsAllOrNothing(t *testing.T) {
	svc := newService(t)
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install phones: %v", err)
	}
	if _, err := svc.InstallProvider("departmentMail", pibling.New(), providerapi.Settings{
		pibling.ArgSourceAttribute:   "mail",
		pibling.ArgSourceObjectClass: "person",
	}); err != nil {
		t.Fatalf("install mail: %v", err)
	}

	err := svc.Reconfigure(map[string]providerapi.Settings{
		"departmentPhones": {
			pibling.ArgSourceAttribute:   "pager",
			pibling.ArgSourceObjectClass: "person",
		},
		"departmentMail": {
			pibling.ArgSourceAttribute: "mail", // missing class: rejected
		},
	})
	if err == nil {
		t.Fatalf("expected rejection of the invalid candidate")
	}

	// The valid candidate must not have been applied either.
	entry, _ := svc.GetEntry(domain.MustParseDN("cn=alice,ou=people,dc=example,dc=com"))
	attr := svc.GenerateVirtual(context.Background(), entry, "departmentPhones")
	if attr == nil {
		t.Fatalf("expected attribute from previous configuration")
	}
	if attr.Values[0] != "555-1111" {
		t.Fatalf("previous source attribute should remain active, got %v", attr.Values)
	}

	if err := svc.Reconfigure(map[string]providerapi.Settings{
		"departmentPhones": {
			pibling.ArgSourceAttribute:   "mail",
			pibling.ArgSourceObjectClass: "person",
		},
	}); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if svc.GenerateVirtual(context.Background(), entry, "departmentPhones") != nil {
		t.Fatalf("new configuration should collect mail, which no entry carries")
	}
}

func TestInstalledProvidersSorted(t *testing.T) {
	svc := newService(t)
	if _, err := svc.InstallProvider("zPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := svc.InstallProvider("aPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}
	metas := svc.InstalledProviders()
	if len(metas) != 2 || metas[0].Attribute != "aPhones" || metas[1].Attribute != "zPhones" {
		t.Fatalf("metadata order = %+v", metas)
	}
}

func TestCloseTearsDownProviders(t *testing.T) {
	svc := newService(t)
	seedDepartment(t, svc)
	if _, err := svc.InstallProvider("departmentPhones", pibling.New(), piblingSettings()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := svc.InstalledProviders(); len(got) != 0 {
		t.Fatalf("providers should be torn down, got %+v", got)
	}
}
