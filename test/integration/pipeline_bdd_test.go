//go:build integration

package integration

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/capture"
	"github.com/opspulse/workmon/internal/daemon"
	"github.com/opspulse/workmon/internal/domain"
	"github.com/opspulse/workmon/internal/infra"
	"github.com/opspulse/workmon/internal/usecase"
)

func grantedGate() *infra.Gate {
	env := map[string]string{
		"WORKMON_ACCESSIBILITY":    "granted",
		"WORKMON_SCREEN_CAPTURE":   "granted",
		"WORKMON_INPUT_MONITORING": "granted",
	}
	return infra.NewGate(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}, nil, zap.NewNop())
}

var _ = Describe("Capture Pipeline", func() {
	var (
		buffer     *capture.BoundedEventBuffer
		tracker    *capture.FocusContextTracker
		controller *capture.Controller
		consent    domain.PrivacyPolicy
	)

	BeforeEach(func() {
		buffer = capture.NewBoundedEventBuffer(500)
		tracker = capture.NewFocusContextTracker()
		consent = infra.DefaultPrivacyPolicy()

		cfg := domain.DefaultSessionConfig()
		logger := zap.NewNop()
		fast := 20 * time.Millisecond

		sources := []domain.EventSource{
			capture.NewKeyboardSource(&infra.SimulatedKeyboardHook{Interval: fast}, buffer,
				capture.NewKeystrokeRingBuffer(cfg.KeystrokeRingCapacity), logger),
			capture.NewPointerSource(&infra.SimulatedPointerHook{Interval: fast}, buffer, logger),
			capture.NewFocusSource(&infra.SimulatedFocusHook{Interval: fast}, buffer, tracker,
				infra.NewProcessResolver(), consent.AllowAppTracking, logger),
		}
		controller = capture.NewController(grantedGate(), sources,
			capture.NewScreenshotSource(infra.SimulatedScreenGrabber{}),
			infra.NewFileScreenshotStore(GinkgoT().TempDir()),
			buffer, consent, logger)
	})

	AfterEach(func() {
		Expect(controller.Stop()).To(Succeed())
	})

	Describe("a full session", func() {
		It("captures keyboard, pointer, and focus events end to end", func() {
			Expect(controller.Start(context.Background())).To(Succeed())
			Expect(controller.State()).To(Equal(domain.StateRunning))
			Expect(controller.Degraded()).To(BeEmpty())

			Eventually(buffer.Len, 2*time.Second, 20*time.Millisecond).
				Should(BeNumerically(">=", 6))

			kinds := map[domain.EventKind]int{}
			for _, ev := range buffer.DrainAll() {
				kinds[ev.Kind]++
			}
			Expect(kinds[domain.KindKey]).To(BeNumerically(">", 0))
			Expect(kinds[domain.KindPointer]).To(BeNumerically(">", 0))
			Expect(kinds[domain.KindFocus]).To(BeNumerically(">", 0))

			_, focused := tracker.Current()
			Expect(focused).To(BeTrue())
		})

		It("stops cleanly and emits nothing afterwards", func() {
			Expect(controller.Start(context.Background())).To(Succeed())
			Eventually(buffer.Len, 2*time.Second, 20*time.Millisecond).
				Should(BeNumerically(">", 0))

			Expect(controller.Stop()).To(Succeed())
			buffer.DrainAll()

			Consistently(buffer.Len, 200*time.Millisecond, 20*time.Millisecond).
				Should(BeZero())
		})

		It("takes an on-demand screenshot through the store", func() {
			Expect(controller.Start(context.Background())).To(Succeed())

			event, err := controller.CaptureScreenshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(event.Ref).NotTo(BeEmpty())
			Expect(event.ByteSize).To(BeNumerically(">", 0))
		})
	})

	Describe("upload and offline spool", func() {
		It("drains batches into the spool and resubmits them", func() {
			key, err := infra.GenerateKey()
			Expect(err).NotTo(HaveOccurred())
			spool, err := infra.NewEncryptedSpool(GinkgoT().TempDir(), key)
			Expect(err).NotTo(HaveOccurred())
			defer spool.Close()

			Expect(spool.Enqueue(domain.EventBatch{
				ID:     "parked-1",
				Events: []domain.ActivityEvent{{Kind: domain.KindKey, Timestamp: time.Now()}},
			})).To(Succeed())

			logger := zap.NewNop()
			ingestor := infra.NewLoggingIngestor(logger)
			agent := daemon.NewAgent(daemon.AgentConfig{
				UploadInterval:    50 * time.Millisecond,
				SpoolRetryEvery:   50 * time.Millisecond,
				HeartbeatInterval: time.Minute,
			}, buffer, ingestor, spool, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			_ = agent.Run(ctx)

			batches, _ := ingestor.Stats()
			Expect(batches).To(BeNumerically(">=", 1))
			remaining, err := spool.Len()
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(BeZero())
		})
	})
})

var _ = Describe("Governance Read Path", func() {
	var (
		svc      *usecase.QueryService
		policies *infra.MemoryPolicyStore
	)

	BeforeEach(func() {
		directory := infra.NewMemoryDirectory([]domain.UserRecord{
			{ID: "e1", Role: domain.RoleEmployee, DepartmentID: "eng", OrganizationID: "org-1"},
			{ID: "m1", Role: domain.RoleManager, DepartmentID: "eng", OrganizationID: "org-1"},
		})
		policies = infra.NewMemoryPolicyStore()
		reader := staticReader{records: []domain.ActivityRecord{{
			SubjectID:   "e1",
			Kind:        domain.KindFocus,
			AppName:     "Google Chrome",
			WindowTitle: ptr("payroll.xlsx"),
		}}}
		svc = usecase.NewQueryService(usecase.NewResolver(directory),
			usecase.NewFilter(), policies, reader, zap.NewNop())
	})

	It("redacts a manager's view when the subject withheld sharing consent", func() {
		manager := domain.Requester{ID: "m1", Role: domain.RoleManager, DepartmentID: "eng", OrganizationID: "org-1"}

		result, err := svc.Query(context.Background(), manager, usecase.ActivityQuery{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Scope).To(Equal(domain.ScopeTeam))
		Expect(result.Records).To(HaveLen(1))
		Expect(result.Records[0].WindowTitle).To(BeNil())
		Expect(result.Records[0].AppName).To(Equal("browser"))
	})

	It("passes detail through once the subject consents", func() {
		policy := infra.DefaultPrivacyPolicy()
		policy.ShareDataWithManager = true
		policies.SetPolicy("e1", policy)

		manager := domain.Requester{ID: "m1", Role: domain.RoleManager, DepartmentID: "eng", OrganizationID: "org-1"}
		result, err := svc.Query(context.Background(), manager, usecase.ActivityQuery{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records[0].WindowTitle).NotTo(BeNil())
		Expect(result.Records[0].AppName).To(Equal("Google Chrome"))
	})

	It("denies an employee querying a peer", func() {
		employee := domain.Requester{ID: "e1", Role: domain.RoleEmployee, DepartmentID: "eng", OrganizationID: "org-1"}

		_, err := svc.Query(context.Background(), employee, usecase.ActivityQuery{TargetUserID: "m1"})
		var denied *usecase.ErrAccessDenied
		Expect(errors.As(err, &denied)).To(BeTrue())
		Expect(denied.Scope).To(Equal(domain.ScopeSelf))
	})
})

type staticReader struct {
	records []domain.ActivityRecord
}

func (r staticReader) FetchRecords(ctx context.Context, subjectIDs []string, limit int) ([]domain.ActivityRecord, error) {
	return r.records, nil
}

func ptr(v string) *string { return &v }
