package notifier

import (
	"html/template"
	"strings"

	"docucloud/internal/inquiries"
)

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #2563eb, #1e40af); padding: 30px; text-align: center;">
    <h1 style="color: white; margin: 0;">New Inquiry Received</h1>
  </div>

  <div style="padding: 30px; background: #f8fafc;">
    <div style="background: white; padding: 20px; border-radius: 8px;">
      <h2 style="margin-top: 0; color: #1e293b;">Contact Information</h2>

      <table style="width: 100%; border-collapse: collapse;">
        <tr style="border-bottom: 1px solid #e2e8f0;">
          <td style="padding: 10px; font-weight: bold; width: 30%;">Name:</td>
          <td style="padding: 10px;">{{.Name}}</td>
        </tr>
        <tr style="border-bottom: 1px solid #e2e8f0;">
          <td style="padding: 10px; font-weight: bold;">Email:</td>
          <td style="padding: 10px;"><a href="mailto:{{.Email}}" style="color: #2563eb;">{{.Email}}</a></td>
        </tr>
        {{if .Phone}}
        <tr style="border-bottom: 1px solid #e2e8f0;">
          <td style="padding: 10px; font-weight: bold;">Phone:</td>
          <td style="padding: 10px;"><a href="tel:{{.Phone}}" style="color: #2563eb;">{{.Phone}}</a></td>
        </tr>
        {{end}}
        {{if .Company}}
        <tr style="border-bottom: 1px solid #e2e8f0;">
          <td style="padding: 10px; font-weight: bold;">Company:</td>
          <td style="padding: 10px;">{{.Company}}</td>
        </tr>
        {{end}}
        <tr>
          <td style="padding: 10px; font-weight: bold;">Source:</td>
          <td style="padding: 10px;">{{.Source}}</td>
        </tr>
      </table>
    </div>

    <div style="background: white; padding: 20px; border-radius: 8px; margin-top: 20px;">
      <h3 style="margin-top: 0; color: #1e293b;">Message:</h3>
      <p style="color: #64748b; line-height: 1.6; white-space: pre-wrap;">{{.Message}}</p>
    </div>
  </div>

  <div style="padding: 20px; text-align: center; color: #64748b; font-size: 12px;">
    <p>DocuCloud Solutions | Automated Inquiry Notification</p>
  </div>
</body>
</html>`))

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #2563eb, #1e40af); padding: 30px; text-align: center;">
    <h1 style="color: white; margin: 0;">Thank You, {{.FirstName}}!</h1>
  </div>

  <div style="padding: 30px; background: #f8fafc;">
    <p style="font-size: 16px; line-height: 1.6; color: #475569;">
      We received your inquiry and appreciate you reaching out to DocuCloud Solutions.
    </p>

    <div style="background: white; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #1e293b; margin-top: 0;">What happens next?</h3>
      <ul style="color: #64748b; line-height: 1.8;">
        <li>We&#39;ll review your inquiry within the next few hours</li>
        <li>A team member will contact you within 24 hours</li>
        <li>We&#39;ll schedule your free 15-minute automation consultation</li>
        <li>You&#39;ll receive a customized automation strategy</li>
      </ul>
    </div>

    <p style="font-size: 16px; line-height: 1.6; color: #475569;">
      In the meantime, feel free to explore our case studies to see how we&#39;ve helped businesses save 10-30 hours per week.
    </p>

    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e2e8f0;">
      <p style="color: #64748b; font-size: 14px;">
        Best regards,<br>
        <strong style="color: #1e293b;">The DocuCloud Solutions Team</strong>
      </p>
    </div>
  </div>

  <div style="padding: 20px; text-align: center; color: #64748b; font-size: 12px;">
    <p>DocuCloud Solutions LLC<br>
    Based in New York City | Serving businesses nationwide<br>
    <a href="https://docucloudsolutions.com" style="color: #2563eb;">docucloudsolutions.com</a></p>
  </div>
</body>
</html>`))

func renderAdminNotification(inquiry *inquiries.Inquiry) (string, error) {
	var b strings.Builder
	if err := adminTemplate.Execute(&b, inquiry); err != nil {
		return "", err
	}
	return b.String(), nil
}

type customerData struct {
	FirstName string
}

func renderCustomerConfirmation(firstName string) (string, error) {
	var b strings.Builder
	if err := customerTemplate.Execute(&b, customerData{FirstName: firstName}); err != nil {
		return "", err
	}
	return b.String(), nil
}
