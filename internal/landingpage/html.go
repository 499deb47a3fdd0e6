package landingpage

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"text/template"
)

var (
	leadingHTMLFence = regexp.MustCompile("(?i)^```html\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("```\\s*$")
)

// StripCodeFences removes markdown fences a model may wrap its HTML in and trims
// surrounding whitespace.
func StripCodeFences(s string) string {
	s = leadingHTMLFence.ReplaceAllString(s, "")
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// InjectOrderScript inserts the lead-capture script right before the last
// </body>, or appends it when the page has none.
func InjectOrderScript(html, endpoint string) (string, error) {
	script, err := OrderScript(endpoint)
	if err != nil {
		return "", err
	}
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + script + html[idx:], nil
	}
	return html + script, nil
}

// messages holds the localized form feedback. "en" is the fallback.
var messages = map[string]map[string]string{
	"success": {
		"ru": "✅ Заявка отправлена! Мы свяжемся с вами.",
		"uk": "✅ Заявку надіслано! Ми зв’яжемося з вами.",
		"en": "✅ Your request has been sent! We will contact you.",
		"de": "✅ Ihre Anfrage wurde gesendet! Wir melden uns.",
		"fr": "✅ Votre demande a été envoyée ! Nous vous contacterons.",
		"es": "✅ ¡Solicitud enviada! Nos pondremos en contacto.",
		"pl": "✅ Zgłoszenie wysłane! Skontaktujemy się z Tobą.",
		"tr": "✅ Talebiniz gönderildi! Sizinle iletişime geçeceğiz.",
	},
	"error": {
		"ru": "Ошибка при отправке. Попробуйте ещё раз.",
		"uk": "Помилка. Спробуйте ще раз.",
		"en": "Submission error. Please try again.",
		"de": "Fehler beim Senden. Bitte versuchen Sie es erneut.",
		"fr": "Erreur d’envoi. Veuillez réessayer.",
		"es": "Error al enviar. Por favor, inténtelo de nuevo.",
		"pl": "Błąd wysyłania. Spróbuj ponownie.",
		"tr": "Gönderme hatası. Lütfen tekrar deneyin.",
	},
}

var orderScriptTmpl = template.Must(template.New("order").Parse(`<script>
(function () {
  var ENDPOINT = '{{js .Endpoint}}';
  var lang = ((document.documentElement.lang || navigator.language || 'en').slice(0, 2)).toLowerCase();
  var i18n = {{.Messages}};
  var successMsg = i18n.success[lang] || i18n.success['en'];
  var errorMsg = i18n.error[lang] || i18n.error['en'];

  function handleSubmit(form, e) {
    e.preventDefault();
    e.stopPropagation();
    var nameInput = form.querySelector('input[name="name"], input[type="text"]');
    var emailInput = form.querySelector('input[name="email"], input[type="email"]');
    var phoneInput = form.querySelector('input[name="phone"], input[type="tel"]');
    var name = nameInput ? nameInput.value.trim() : '';
    var email = emailInput ? emailInput.value.trim() : '';
    var phone = phoneInput ? phoneInput.value.trim() : '';
    var btn = form.querySelector('button[type="submit"], button');
    if (btn) btn.disabled = true;
    fetch(ENDPOINT, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ name: name, email: email, phone: phone })
    })
      .then(function (res) {
        if (!res.ok) throw new Error('status ' + res.status);
        form.innerHTML = '<p style="text-align:center;padding:2rem;font-size:1.2rem;color:inherit">' + successMsg + '</p>';
      })
      .catch(function () {
        if (btn) btn.disabled = false;
        alert(errorMsg);
      });
    return false;
  }

  function setupForms() {
    document.querySelectorAll('form').forEach(function (form) {
      form.removeAttribute('action');
      form.onsubmit = function (e) { return handleSubmit(form, e); };
    });
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', setupForms);
  } else {
    setupForms();
  }
})();
</script>`))

// OrderScript renders the lead-capture script bound to endpoint.
func OrderScript(endpoint string) (string, error) {
	table, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = orderScriptTmpl.Execute(&buf, struct {
		Endpoint string
		Messages string
	}{Endpoint: endpoint, Messages: string(table)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
