package types

// Caption prompt templates. The first %s slot takes the subject clause (see
// caption.Adapter), the second the subject reference used in the action
// section of the clip prompt.

const ImageCaptionPrompt = `Analyze this image and provide a detailed description suitable for a video caption, covering the following aspects in approximately 80-100 words:
1. **Subject:**%s appearance, expression, clothing, and posture.
2. **Scene:** Describe the environment, background, and setting.
3. **Visual Style:** Describe the overall visual style (e.g., realistic, illustration, photographic style, specific art style if applicable).
4. **Atmosphere:** Describe the mood or feeling conveyed (e.g., mysterious, joyful, tense, solemn, vibrant).
Output only the description.`

const ClipCaptionPrompt = `Analyze this video clip and provide a detailed description covering the following aspects in approximately 80-100 words:
1. **Subject:**%s appearance, expression, clothing, and posture.
2. **Scene:** Describe the environment, background, and setting.
3. **Action/Motion:** Describe the key actions or movements performed by %s and any significant camera movement (e.g., push in, pull out, pan, follow, orbit). Use simple, direct verbs.
4. **Visual Style:** Describe the overall visual style (e.g., realistic, animated, cinematic, film grain, specific art style if applicable).
5. **Atmosphere:** Describe the mood or feeling conveyed (e.g., mysterious, joyful, tense, solemn, vibrant).
Output only the description.`
