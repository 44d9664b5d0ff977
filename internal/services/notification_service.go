package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	pkgmail "github.com/hazemkhaled/digimarket/pkg/mail"
)

const (
	welcomeSubject      = "مرحبًا بك في ديجيتال ماركت"
	welcomeBodyTemplate = `<div dir="rtl" style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>مرحبًا %s،</h2>
  <p>شكرًا لتسجيلك في ديجيتال ماركت. نحن متحمسون لانضمامك إلينا!</p>
  <p>يمكنك الآن تصفح منتجاتنا والشراء بكل سهولة.</p>
  <p>إذا كان لديك أي أسئلة، فلا تتردد في التواصل معنا.</p>
  <div style="margin-top: 20px; padding: 15px; background-color: #f7f7f7; border-radius: 5px;">
    <p style="margin: 0; color: #666;">مع خالص التحيات،</p>
    <p style="margin: 5px 0 0; font-weight: bold; color: #333;">فريق ديجيتال ماركت</p>
  </div>
</div>`

	purchaseSubject      = "تأكيد الطلب - ديجيتال ماركت"
	purchaseBodyTemplate = `<div dir="rtl" style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>مرحبًا %s،</h2>
  <p>شكرًا لطلبك! لقد تم تأكيد طلبك بنجاح.</p>
  <p><strong>رقم الطلب:</strong> %s</p>
  <p><strong>إجمالي المبلغ:</strong> $%.2f</p>
  <h3>تفاصيل الطلب:</h3>
  <ul style="padding-right: 20px;">
%s  </ul>
  <p>سيتم معالجة طلبك وإرساله في أقرب وقت ممكن.</p>
  <div style="margin-top: 20px; padding: 15px; background-color: #f7f7f7; border-radius: 5px;">
    <p style="margin: 0; color: #666;">مع خالص التحيات،</p>
    <p style="margin: 5px 0 0; font-weight: bold; color: #333;">فريق ديجيتال ماركت</p>
  </div>
</div>`
	adminNewUserSubject      = "مستخدم جديد - ديجيتال ماركت"
	adminNewUserBodyTemplate = `<div dir="rtl" style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>مستخدم جديد</h2>
  <p>تم تسجيل مستخدم جديد في ديجيتال ماركت:</p>
  <div style="background-color: #f7f7f7; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p><strong>اسم المستخدم:</strong> %s</p>
    <p><strong>البريد الإلكتروني:</strong> %s</p>
    <p><strong>تاريخ التسجيل:</strong> %s</p>
  </div>
  <p>يمكنك التحقق من المستخدمين في لوحة التحكم لمزيد من التفاصيل.</p>
</div>`

	adminNewOrderSubject      = "طلب جديد - ديجيتال ماركت"
	adminNewOrderBodyTemplate = `<div dir="rtl" style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>طلب جديد</h2>
  <p>تم تقديم طلب جديد في ديجيتال ماركت:</p>
  <div style="background-color: #f7f7f7; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p><strong>رقم الطلب:</strong> %s</p>
    <p><strong>المستخدم:</strong> %s (%s)</p>
    <p><strong>إجمالي المبلغ:</strong> $%.2f</p>
    <p><strong>تاريخ الطلب:</strong> %s</p>
  </div>
  <p>يمكنك التحقق من الطلبات في لوحة التحكم لمزيد من التفاصيل.</p>
</div>`

	notificationTimeLayout = "2006-01-02 15:04"
)

// NotificationService sends transactional storefront email: welcome mail and
// an admin alert on registration, purchase confirmations and admin order
// alerts after checkout. Delivery is best effort; callers log failures and
// carry on.
type NotificationService struct {
	db     *gorm.DB
	mailer pkgmail.Mailer
}

// NewNotificationService constructs the service.
func NewNotificationService(db *gorm.DB, mailer pkgmail.Mailer) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, mailer: mailer}, nil
}

// SendWelcome mails the registration greeting to a new account.
func (s *NotificationService) SendWelcome(ctx context.Context, user *models.User) error {
	if s.mailer == nil || user == nil {
		return nil
	}

	msg := pkgmail.Message{
		To:      []string{user.Email},
		Subject: welcomeSubject,
		Body:    fmt.Sprintf(welcomeBodyTemplate, user.Username),
		HTML:    true,
	}
	if err := s.mailer.Send(ensureContext(ctx), msg); err != nil && !errors.Is(err, pkgmail.ErrSMTPDisabled) {
		return fmt.Errorf("notification service: welcome email: %w", err)
	}
	return nil
}

// SendPurchaseConfirmation mails the order summary to the buyer.
func (s *NotificationService) SendPurchaseConfirmation(ctx context.Context, userID string, order *models.Order) error {
	if s.mailer == nil || order == nil {
		return nil
	}
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).
		Select("id", "username", "email").
		Take(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("notification service: look up buyer: %w", err)
	}

	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "    <li>%s - $%.2f x %d</li>\n", item.Title, item.UnitPrice, item.Quantity)
	}

	msg := pkgmail.Message{
		To:      []string{user.Email},
		Subject: purchaseSubject,
		Body:    fmt.Sprintf(purchaseBodyTemplate, user.Username, order.ID, order.Total, lines.String()),
		HTML:    true,
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, pkgmail.ErrSMTPDisabled) {
		return fmt.Errorf("notification service: purchase email: %w", err)
	}
	return nil
}

// NotifyAdminsNewUser alerts every active admin account about a registration.
func (s *NotificationService) NotifyAdminsNewUser(ctx context.Context, user *models.User) error {
	if s.mailer == nil || user == nil {
		return nil
	}
	ctx = ensureContext(ctx)

	recipients, err := s.adminEmails(ctx)
	if err != nil || len(recipients) == 0 {
		return err
	}

	msg := pkgmail.Message{
		To:      recipients,
		Subject: adminNewUserSubject,
		Body: fmt.Sprintf(adminNewUserBodyTemplate,
			user.Username, user.Email, user.CreatedAt.Format(notificationTimeLayout)),
		HTML: true,
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, pkgmail.ErrSMTPDisabled) {
		return fmt.Errorf("notification service: admin new-user email: %w", err)
	}
	return nil
}

// NotifyAdminsNewOrder alerts every active admin account about a new order.
func (s *NotificationService) NotifyAdminsNewOrder(ctx context.Context, userID string, order *models.Order) error {
	if s.mailer == nil || order == nil {
		return nil
	}
	ctx = ensureContext(ctx)

	recipients, err := s.adminEmails(ctx)
	if err != nil || len(recipients) == 0 {
		return err
	}

	var buyer models.User
	if err := s.db.WithContext(ctx).
		Select("id", "username", "email").
		Take(&buyer, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("notification service: look up buyer: %w", err)
	}

	msg := pkgmail.Message{
		To:      recipients,
		Subject: adminNewOrderSubject,
		Body: fmt.Sprintf(adminNewOrderBodyTemplate,
			order.ID, buyer.Username, buyer.Email, order.Total,
			order.CreatedAt.Format(notificationTimeLayout)),
		HTML: true,
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, pkgmail.ErrSMTPDisabled) {
		return fmt.Errorf("notification service: admin new-order email: %w", err)
	}
	return nil
}

func (s *NotificationService) adminEmails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_admin = ? AND is_active = ?", true, true).
		Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("notification service: list admin emails: %w", err)
	}
	return emails, nil
}
