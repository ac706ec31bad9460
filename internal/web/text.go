package web

// Hero copy. The rest of the page comes from the content files.
var (
	HeroHeadline = `Bienvenue sur mon Portfolio`

	HeroIntro = `Je suis BÉGUINEL Kévin, un développeur passionné par la création
	d'applications web performantes et modernes.`

	HeroPhoto = `/static/img/photo_profil.jpg`
)

// Status lines shown under the contact form.
const (
	contactSentText    = "Message envoyé avec succès !"
	contactErrorText   = "Erreur lors de l'envoi du message."
	contactInvalidText = "Merci de vérifier les champs du formulaire."
)
